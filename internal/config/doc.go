// Package config loads, defaults, normalizes, and validates the process-wide
// newsreel configuration. The configuration is read once at startup and
// treated as immutable for the process lifetime; components receive it by
// constructor injection rather than reading ambient state.
package config
