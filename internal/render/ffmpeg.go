package render

import (
	"fmt"
	"strings"

	"newsreel/internal/config"
	"newsreel/internal/scenes"
)

// scalePadFilter letterboxes the source image to the working resolution.
func scalePadFilter(out config.Output) string {
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black",
		out.Width, out.Height, out.Width, out.Height)
}

// effectFilter builds the video filter chain for one scene event.
func effectFilter(event scenes.Event, out config.Output) string {
	base := scalePadFilter(out)
	frames := int(event.Duration*float64(out.FPS) + 0.5)
	if frames < 1 {
		frames = 1
	}
	switch event.Effect {
	case scenes.EffectIntroFade:
		fade := fadeSpan(event.Duration)
		return fmt.Sprintf("%s,fade=t=in:st=0:d=%.3f", base, fade)
	case scenes.EffectOutroFade:
		fade := fadeSpan(event.Duration)
		return fmt.Sprintf("%s,fade=t=out:st=%.3f:d=%.3f", base, event.Duration-fade, fade)
	case scenes.EffectSlowZoom:
		return fmt.Sprintf("%s,zoompan=z='min(zoom+0.0005,1.10)':d=%d:s=%dx%d:fps=%d",
			base, frames, out.Width, out.Height, out.FPS)
	case scenes.EffectKenBurns:
		return fmt.Sprintf("%s,zoompan=z='min(zoom+0.0010,1.20)':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=%d:s=%dx%d:fps=%d",
			base, frames, out.Width, out.Height, out.FPS)
	default: // hold
		return base
	}
}

// fadeSpan keeps fades visible on very short events.
func fadeSpan(duration float64) float64 {
	fade := 1.0
	if half := duration / 2; half < fade {
		fade = half
	}
	return fade
}

// segmentArgs builds the ffmpeg invocation that renders one still-image
// scene event into a silent video segment.
func segmentArgs(imagePath string, event scenes.Event, out config.Output, segmentPath string) []string {
	return []string{
		"-y",
		"-loop", "1",
		"-framerate", fmt.Sprintf("%d", out.FPS),
		"-i", imagePath,
		"-t", fmt.Sprintf("%.3f", event.Duration),
		"-vf", effectFilter(event, out),
		"-c:v", out.VideoCodec,
		"-preset", out.Preset,
		"-crf", fmt.Sprintf("%d", out.CRF),
		"-pix_fmt", "yuv420p",
		"-an",
		segmentPath,
	}
}

// concatArgs stitches the scene segments together without re-encoding.
func concatArgs(listPath, outputPath string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	}
}

// burnArgs overlays the ASS subtitle script onto the assembled video.
func burnArgs(videoPath, assPath string, out config.Output, outputPath string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-vf", fmt.Sprintf("subtitles='%s'", escapeFilterPath(assPath)),
		"-c:v", out.VideoCodec,
		"-preset", out.Preset,
		"-crf", fmt.Sprintf("%d", out.CRF),
		"-an",
		outputPath,
	}
}

// muxArgs merges video, narration, and optional looped background music.
// With music present the narration stays at full level while music sits
// under it at musicVolume.
func muxArgs(videoPath, narrationPath, musicPath string, musicVolume float64, out config.Output, outputPath string) []string {
	args := []string{
		"-y",
		"-i", videoPath,
		"-i", narrationPath,
	}
	if strings.TrimSpace(musicPath) != "" {
		args = append(args,
			"-stream_loop", "-1",
			"-i", musicPath,
			"-filter_complex",
			fmt.Sprintf("[2:a]volume=%.2f[music];[1:a][music]amix=inputs=2:duration=first:normalize=0[aout]", musicVolume),
			"-map", "0:v",
			"-map", "[aout]",
		)
	} else {
		args = append(args,
			"-map", "0:v",
			"-map", "1:a",
		)
	}
	args = append(args,
		"-c:v", "copy",
		"-c:a", out.AudioCodec,
		"-shortest",
		outputPath,
	)
	return args
}

// escapeFilterPath quotes characters the subtitles filter treats specially.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
	)
	return replacer.Replace(path)
}

// concatListContent renders the concat demuxer file for the given segments.
func concatListContent(segmentPaths []string) string {
	var b strings.Builder
	for _, path := range segmentPaths {
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(path, "'", `'\''`))
	}
	return b.String()
}
