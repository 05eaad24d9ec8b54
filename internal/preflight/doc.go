// Package preflight provides readiness checks for the external binaries,
// directories, and provider credentials the render pipeline depends on.
//
// The daemon runs RunAll once at startup so a missing ffmpeg or a full disk
// fails loudly before any job is claimed. The CLI status command reuses the
// same checks for operator diagnostics.
package preflight
