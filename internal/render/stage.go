package render

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"newsreel/internal/config"
	"newsreel/internal/logging"
	"newsreel/internal/queue"
	"newsreel/internal/scenes"
	"newsreel/internal/services"
	"newsreel/internal/stage"
	"newsreel/internal/subtitles"
)

// commandFunc executes one external render command. onProgress, when set,
// receives the encoder's out-time position in seconds. Tests substitute it.
type commandFunc func(ctx context.Context, binary string, args []string, onProgress func(float64)) error

// Compositor is the workflow stage that assembles image, narration,
// subtitles, and effects into the rendered video.
type Compositor struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	run    commandFunc
}

// NewCompositor builds the render stage.
func NewCompositor(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Compositor {
	logger = logging.NewComponentLogger(logger, "render")
	return &Compositor{cfg: cfg, store: store, logger: logger, run: runFFmpeg}
}

// NewCompositorWithRunner injects a command runner, used by tests.
func NewCompositorWithRunner(cfg *config.Config, store *queue.Store, logger *slog.Logger, run commandFunc) *Compositor {
	c := NewCompositor(cfg, store, logger)
	if run != nil {
		c.run = run
	}
	return c
}

// Prepare implements stage.Handler.
func (c *Compositor) Prepare(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Rendering", "Starting video render", 0)
	if strings.TrimSpace(item.ImagePath) == "" {
		return services.Wrap(services.ErrValidation, "render", "validate inputs",
			"No source image recorded for the job", nil)
	}
	if _, err := os.Stat(item.ImagePath); err != nil {
		return services.Wrap(services.ErrValidation, "render", "validate inputs",
			"Source image is missing", err)
	}
	if strings.TrimSpace(item.AudioFile) == "" || item.AudioSeconds <= 0 {
		return services.Wrap(services.ErrValidation, "render", "validate inputs",
			"No narration track; rerun synthesis", nil)
	}
	if strings.TrimSpace(item.ScenesFile) == "" {
		return services.Wrap(services.ErrValidation, "render", "validate inputs",
			"No scene plan; rerun planning", nil)
	}
	if strings.TrimSpace(item.CuesFile) == "" {
		return services.Wrap(services.ErrValidation, "render", "validate inputs",
			"No subtitle cues; rerun alignment", nil)
	}
	return nil
}

// Execute implements stage.Handler. The whole render is bounded by the
// configured timeout.
func (c *Compositor) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, c.logger)

	timeout := time.Duration(c.cfg.Render.TimeoutSeconds) * time.Second
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	plan, err := scenes.Load(item.ScenesFile)
	if err != nil {
		return services.Wrap(services.ErrValidation, "render", "load scene plan",
			"Scene plan is missing or invalid; rerun planning", err)
	}
	if err := scenes.Validate(plan); err != nil {
		return services.Wrap(services.ErrRenderMismatch, "render", "load scene plan",
			"Scene plan timeline is inconsistent", err)
	}

	stagingRoot := item.StagingRoot(c.cfg.Paths.StagingDir)
	renderDir := filepath.Join(stagingRoot, "render")
	if err := os.RemoveAll(renderDir); err != nil {
		return services.Wrap(services.ErrTransient, "render", "clean render dir",
			"Failed to clear previous render artifacts", err)
	}
	if err := os.MkdirAll(renderDir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "render", "create render dir",
			"Failed to create render directory", err)
	}

	ffmpeg := c.cfg.FFmpegBinary()
	out := c.cfg.Output

	// Scene segments.
	segmentPaths := make([]string, 0, len(plan))
	for i, event := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		segmentPath := filepath.Join(renderDir, fmt.Sprintf("segment-%02d.%s", i, out.Container))
		logger.Debug("rendering scene segment",
			logging.String("effect", event.Effect),
			logging.Float64("seconds", event.Duration),
		)
		if err := c.run(ctx, ffmpeg, segmentArgs(item.ImagePath, event, out, segmentPath), nil); err != nil {
			return wrapRenderErr(ctx, "render scene segment", err)
		}
		segmentPaths = append(segmentPaths, segmentPath)
		c.reportProgress(ctx, item, "Rendering scenes", float64(i+1)/float64(len(plan))*50)
	}

	// Concat.
	listPath := filepath.Join(renderDir, "segments.txt")
	if err := os.WriteFile(listPath, []byte(concatListContent(segmentPaths)), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "render", "write concat list",
			"Failed to write segment list", err)
	}
	assembledPath := filepath.Join(renderDir, "assembled."+out.Container)
	if err := c.run(ctx, ffmpeg, concatArgs(listPath, assembledPath), nil); err != nil {
		return wrapRenderErr(ctx, "concatenate segments", err)
	}
	c.reportProgress(ctx, item, "Assembling timeline", 60)

	// Subtitle burn.
	assPath := subtitles.ASSPathFor(item.CuesFile)
	subtitledPath := filepath.Join(renderDir, "subtitled."+out.Container)
	if err := c.run(ctx, ffmpeg, burnArgs(assembledPath, assPath, out, subtitledPath), nil); err != nil {
		return wrapRenderErr(ctx, "burn subtitles", err)
	}
	c.reportProgress(ctx, item, "Burning subtitles", 75)

	// Audio mux.
	renderedPath := filepath.Join(renderDir, "rendered."+out.Container)
	muxProgress := func(outSeconds float64) {
		fraction := outSeconds / item.AudioSeconds
		if fraction > 1 {
			fraction = 1
		}
		c.reportProgress(ctx, item, "Muxing audio", 75+fraction*20)
	}
	if err := c.run(ctx, ffmpeg, muxArgs(subtitledPath, item.AudioFile, item.MusicPath, c.cfg.Render.MusicVolume, out, renderedPath), muxProgress); err != nil {
		return wrapRenderErr(ctx, "mux audio", err)
	}

	// Verification against the measured narration duration.
	if err := Verify(ctx, c.cfg.FFprobeBinary(), renderedPath, item.AudioSeconds, out); err != nil {
		return err
	}

	logger.Info("render complete",
		logging.String("rendered_file", renderedPath),
		logging.Float64("seconds", item.AudioSeconds),
	)
	item.RenderedFile = renderedPath
	item.SetProgressComplete("Rendering", "Video rendered")
	return nil
}

// HealthCheck implements stage.Handler.
func (c *Compositor) HealthCheck(ctx context.Context) stage.Health {
	if _, err := exec.LookPath(c.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy("render", "ffmpeg not found: "+err.Error())
	}
	if _, err := exec.LookPath(c.cfg.FFprobeBinary()); err != nil {
		return stage.Unhealthy("render", "ffprobe not found: "+err.Error())
	}
	return stage.Healthy("render")
}

func (c *Compositor) reportProgress(ctx context.Context, item *queue.Item, message string, percent float64) {
	item.SetProgress("Rendering", message, percent)
	if c.store == nil {
		return
	}
	if err := c.store.UpdateProgress(ctx, item); err != nil {
		c.logger.Warn("failed to persist render progress", logging.Error(err))
	}
}

func wrapRenderErr(ctx context.Context, operation string, err error) error {
	if ctx.Err() != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return services.Wrap(services.ErrTimeout, "render", operation,
				"Render exceeded the configured timeout", err)
		}
		return ctx.Err()
	}
	return services.Wrap(services.ErrExternalTool, "render", operation,
		"ffmpeg invocation failed", err)
}

// runFFmpeg executes ffmpeg, streaming -progress output to onProgress when
// a callback is supplied.
func runFFmpeg(ctx context.Context, binary string, args []string, onProgress func(float64)) error {
	if onProgress != nil {
		args = append(args, "-progress", "pipe:1", "-nostats")
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if onProgress == nil {
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("%s: %w: %s", binary, err, strings.TrimSpace(stderr.String()))
		}
		return nil
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%s: stdout pipe: %w", binary, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: start: %w", binary, err)
	}

	parser := NewProgressParser(0)
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if parser.Feed(scanner.Text()) {
			onProgress(parser.OutSeconds())
		}
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w: %s", binary, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
