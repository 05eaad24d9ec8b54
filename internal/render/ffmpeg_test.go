package render

import (
	"strings"
	"testing"

	"newsreel/internal/config"
	"newsreel/internal/scenes"
)

func testOutput() config.Output {
	return config.Output{
		Width: 1920, Height: 1080, FPS: 30,
		Container: "mp4", VideoCodec: "libx264", AudioCodec: "aac",
		CRF: 20, Preset: "medium",
	}
}

func TestSegmentArgsLoopStill(t *testing.T) {
	event := scenes.Event{Index: 0, Effect: scenes.EffectHold, Start: 0, Duration: 24.0}
	args := segmentArgs("/assets/anchor.png", event, testOutput(), "/staging/segment-00.mp4")
	joined := strings.Join(args, " ")

	for _, want := range []string{
		"-loop 1",
		"-framerate 30",
		"-i /assets/anchor.png",
		"-t 24.000",
		"-c:v libx264",
		"-crf 20",
		"-pix_fmt yuv420p",
		"-an",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %s", want, joined)
		}
	}
}

func TestEffectFilters(t *testing.T) {
	out := testOutput()
	tests := []struct {
		effect string
		want   string
	}{
		{scenes.EffectIntroFade, "fade=t=in:st=0"},
		{scenes.EffectOutroFade, "fade=t=out"},
		{scenes.EffectSlowZoom, "zoompan=z='min(zoom+0.0005,1.10)'"},
		{scenes.EffectKenBurns, "zoompan=z='min(zoom+0.0010,1.20)'"},
		{scenes.EffectHold, "pad=1920:1080"},
	}
	for _, tc := range tests {
		filter := effectFilter(scenes.Event{Effect: tc.effect, Duration: 10}, out)
		if !strings.Contains(filter, tc.want) {
			t.Errorf("%s filter missing %q: %s", tc.effect, tc.want, filter)
		}
		if !strings.Contains(filter, "scale=1920:1080:force_original_aspect_ratio=decrease") {
			t.Errorf("%s filter missing scale: %s", tc.effect, filter)
		}
	}
}

func TestFadeSpanShortEvents(t *testing.T) {
	if got := fadeSpan(10); got != 1.0 {
		t.Fatalf("fadeSpan(10) = %v, want 1.0", got)
	}
	if got := fadeSpan(1); got != 0.5 {
		t.Fatalf("fadeSpan(1) = %v, want 0.5", got)
	}
}

func TestMuxArgsWithMusic(t *testing.T) {
	args := muxArgs("video.mp4", "narration.wav", "music.mp3", 0.3, testOutput(), "out.mp4")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-stream_loop -1") {
		t.Errorf("missing music loop: %s", joined)
	}
	if !strings.Contains(joined, "volume=0.30[music]") {
		t.Errorf("missing music volume: %s", joined)
	}
	if !strings.Contains(joined, "amix=inputs=2:duration=first") {
		t.Errorf("missing amix: %s", joined)
	}
	if !strings.Contains(joined, "-shortest") {
		t.Errorf("missing -shortest: %s", joined)
	}
}

func TestMuxArgsWithoutMusic(t *testing.T) {
	args := muxArgs("video.mp4", "narration.wav", "", 0.3, testOutput(), "out.mp4")
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "amix") {
		t.Errorf("unexpected amix without music: %s", joined)
	}
	if !strings.Contains(joined, "-map 0:v -map 1:a") {
		t.Errorf("missing direct mapping: %s", joined)
	}
}

func TestBurnArgsEscapesPath(t *testing.T) {
	args := burnArgs("video.mp4", "/tmp/job's/cues.ass", testOutput(), "out.mp4")
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, `subtitles='/tmp/job\'s/cues.ass'`) {
		t.Errorf("path not escaped: %s", joined)
	}
}

func TestConcatListContent(t *testing.T) {
	content := concatListContent([]string{"/a/seg-00.mp4", "/a/seg-01.mp4"})
	want := "file '/a/seg-00.mp4'\nfile '/a/seg-01.mp4'\n"
	if content != want {
		t.Fatalf("content = %q, want %q", content, want)
	}
}
