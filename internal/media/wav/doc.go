// Package wav reads RIFF/WAVE headers to measure narration duration
// without shelling out to ffprobe.
package wav
