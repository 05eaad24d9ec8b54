// Package render composites the source image, narration track, subtitle
// script, and scene plan into the final video via ffmpeg. It owns timeline
// assembly; pixel work is delegated entirely to the external encoder. Every
// render is verified against the measured narration duration before the
// job advances.
package render
