// Package ffprobe wraps the ffprobe CLI for inspecting rendered media.
package ffprobe
