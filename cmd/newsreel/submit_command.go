package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"newsreel/internal/queue"
	"newsreel/internal/scenes"
	"newsreel/internal/script"
	"newsreel/internal/timing"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var (
		imagePath  string
		scriptPath string
		textPath   string
		topic      string
		style      string
		voice      string
		voiceID    string
		musicPath  string
		target     int
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Queue a news video render job",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if imagePath == "" {
				return fmt.Errorf("--image is required")
			}
			if _, err := os.Stat(imagePath); err != nil {
				return fmt.Errorf("image not readable: %w", err)
			}
			if musicPath != "" {
				if _, err := os.Stat(musicPath); err != nil {
					return fmt.Errorf("music not readable: %w", err)
				}
			}
			if !scenes.IsKnownStyle(style) {
				return fmt.Errorf("unknown style %q (known: %s)", style, strings.Join(scenes.KnownStyles(), ", "))
			}

			scr, err := loadSubmitScript(scriptPath, textPath, topic, target)
			if err != nil {
				return err
			}
			if err := scr.Validate(); err != nil {
				return err
			}
			if topic == "" {
				topic = scr.Topic
			}
			if topic == "" {
				return fmt.Errorf("--topic is required when the script carries none")
			}

			scriptJSON, err := scr.Marshal()
			if err != nil {
				return err
			}

			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			item, err := store.NewJob(cmd.Context(), queue.JobRequest{
				Topic:           topic,
				ImagePath:       imagePath,
				Style:           style,
				VoicePreference: voice,
				VoiceID:         voiceID,
				MusicPath:       musicPath,
				TargetSeconds:   target,
				ScriptJSON:      scriptJSON,
			})
			if err != nil {
				return err
			}

			metrics := timing.NewEstimator(cfg.Timing).Analyze(scr)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Queued job %s (item %d)\n", item.JobID, item.ID)
			fmt.Fprintf(out, "  Topic:     %s\n", topic)
			fmt.Fprintf(out, "  Style:     %s\n", style)
			fmt.Fprintf(out, "  Words:     %d\n", metrics.WordCount)
			fmt.Fprintf(out, "  Estimated: %.1fs narration at %d wpm\n", metrics.EstimatedSeconds, metrics.WordsPerMinute)
			if target > 0 {
				fmt.Fprintf(out, "  Target:    %ds\n", target)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "Portrait image for the anchor shot (required)")
	cmd.Flags().StringVar(&scriptPath, "script", "", "Script JSON file with ordered segments")
	cmd.Flags().StringVar(&textPath, "text", "", "Plain text narration file (alternative to --script)")
	cmd.Flags().StringVar(&topic, "topic", "", "Headline topic for the video")
	cmd.Flags().StringVar(&style, "style", "modern", "Visual style: "+strings.Join(scenes.KnownStyles(), ", "))
	cmd.Flags().StringVar(&voice, "voice", "", "Preferred synthesis provider (elevenlabs, azure, local)")
	cmd.Flags().StringVar(&voiceID, "voice-id", "", "Provider-specific voice identifier")
	cmd.Flags().StringVar(&musicPath, "music", "", "Background music file")
	cmd.Flags().IntVar(&target, "target", 0, "Target duration in seconds")

	return cmd
}

func loadSubmitScript(scriptPath, textPath, topic string, target int) (script.Script, error) {
	switch {
	case scriptPath != "" && textPath != "":
		return script.Script{}, fmt.Errorf("--script and --text are mutually exclusive")
	case scriptPath != "":
		return script.LoadFile(scriptPath)
	case textPath != "":
		raw, err := os.ReadFile(textPath)
		if err != nil {
			return script.Script{}, fmt.Errorf("read text file: %w", err)
		}
		return script.FromText(topic, string(raw), target), nil
	default:
		return script.Script{}, fmt.Errorf("one of --script or --text is required")
	}
}
