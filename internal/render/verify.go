package render

import (
	"context"
	"fmt"
	"math"

	"newsreel/internal/config"
	"newsreel/internal/media/ffprobe"
	"newsreel/internal/services"
)

var probeRender = ffprobe.Inspect

// Verify checks the rendered file against the measured narration duration
// and the configured output geometry. A disagreement beyond one frame
// signals a planner or compositor bug and is fatal.
func Verify(ctx context.Context, ffprobeBinary, path string, audioSeconds float64, out config.Output) error {
	result, err := probeRender(ctx, ffprobeBinary, path)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "verify",
			"Failed to inspect rendered file", err)
	}

	video, ok := result.FirstVideoStream()
	if !ok {
		return services.Wrap(services.ErrRenderMismatch, "render", "verify",
			"Rendered file has no video stream", nil)
	}
	if _, ok := result.FirstAudioStream(); !ok {
		return services.Wrap(services.ErrRenderMismatch, "render", "verify",
			"Rendered file has no audio stream", nil)
	}
	if video.Width != out.Width || video.Height != out.Height {
		return services.Wrap(services.ErrRenderMismatch, "render", "verify",
			fmt.Sprintf("Rendered resolution %dx%d does not match configured %dx%d",
				video.Width, video.Height, out.Width, out.Height), nil)
	}

	tolerance := 1.0 / float64(out.FPS)
	duration := result.DurationSeconds()
	if diff := math.Abs(duration - audioSeconds); diff > tolerance {
		return services.Wrap(services.ErrRenderMismatch, "render", "verify",
			fmt.Sprintf("Rendered duration %.3fs differs from narration %.3fs by %.3fs (tolerance %.3fs)",
				duration, audioSeconds, diff, tolerance), nil)
	}
	return nil
}
