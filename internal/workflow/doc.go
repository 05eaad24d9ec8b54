// Package workflow coordinates the render pipeline. A single manager loop
// claims the oldest actionable queue item, runs the stage registered for its
// status, and persists the resulting transition. Heartbeats keep in-flight
// claims fresh across restarts, cancel requests are polled while a stage runs,
// and transient failures roll the item back to the stage start status for a
// bounded number of retries.
package workflow
