// Package subtitles derives a time-aligned cue timeline from the job
// script and the measured narration duration, then renders it as an ASS
// script for burning into the final video. Estimated segment durations
// act only as proportional weights; measured audio time is authoritative.
package subtitles
