// Package api defines wire-format types, converters, and the read-only HTTP
// surface the daemon exposes for external consumers. It translates internal
// queue models into transport-friendly DTOs so callers never couple to
// internal types.
//
// DTOs use camelCase JSON tags. Internal enums (queue.Status) are exposed as
// lowercase strings and timestamps use RFC3339 with milliseconds.
package api
