// Package daemon ties the workflow manager, status API, and startup recovery
// into a single lifecycle with flock-based locking to prevent multiple
// daemon instances from sharing one queue database.
package daemon
