package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSynthesisUnavailable marks exhaustion of every voice provider in the
	// fallback chain. Fatal: downstream timing has nothing to align to.
	ErrSynthesisUnavailable = errors.New("synthesis unavailable")
	// ErrAlignment marks a degenerate script/audio combination that cannot
	// produce subtitle cues.
	ErrAlignment = errors.New("alignment error")
	// ErrInvalidStyle marks an unknown visual style identifier. Caller input
	// error; never substituted with a default.
	ErrInvalidStyle = errors.New("invalid style")
	// ErrRenderMismatch marks a rendered output whose duration disagrees with
	// the narration track beyond one frame interval.
	ErrRenderMismatch = errors.New("render mismatch")

	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsTransient reports whether the workflow manager should retry the stage
// that produced err. Context cancellation is never retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrTimeout)
}

// IsFatal reports whether err belongs to the fatal taxonomy that moves a job
// straight to failed without consuming the retry budget.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrSynthesisUnavailable) ||
		errors.Is(err, ErrAlignment) ||
		errors.Is(err, ErrInvalidStyle) ||
		errors.Is(err, ErrRenderMismatch) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConfiguration)
}

// Detail captures the human-readable portion of a wrapped stage error.
type Detail struct {
	Message string
}

// Details extracts the presentable reason string from a stage error, dropping
// the sentinel prefix so queue records read cleanly.
func Details(err error) Detail {
	if err == nil {
		return Detail{}
	}
	msg := err.Error()
	for _, marker := range []error{
		ErrSynthesisUnavailable, ErrAlignment, ErrInvalidStyle, ErrRenderMismatch,
		ErrExternalTool, ErrValidation, ErrConfiguration, ErrNotFound, ErrTimeout, ErrTransient,
	} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return Detail{Message: strings.TrimPrefix(msg, prefix)}
		}
	}
	return Detail{Message: msg}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
