package services

import "context"

type contextKey string

const (
	jobIDKey     contextKey = "job_id"
	stageKey     contextKey = "stage"
	requestIDKey contextKey = "request_id"
)

// WithJobID records the queue job identifier on the context so log
// handlers and error wrappers can pick it up downstream.
func WithJobID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext reports the queue job identifier, if one was set.
func JobIDFromContext(ctx context.Context) (int64, bool) {
	switch v := ctx.Value(jobIDKey).(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

// WithStage records the pipeline stage name on the context. Empty
// names are ignored.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext reports the pipeline stage name, if one was set.
func StageFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(stageKey).(string)
	return s, ok && s != ""
}

// WithRequestID records a correlation identifier on the context. Empty
// identifiers are ignored.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext reports the correlation identifier, if one was set.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(requestIDKey).(string)
	return s, ok && s != ""
}
