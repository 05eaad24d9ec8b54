// Package logging wraps log/slog with the handlers and attribute helpers the
// rest of the pipeline uses: a compact color console handler for interactive
// runs, a JSON handler for log files, and context-derived job/stage fields.
package logging
