// Command newsreeld is the background daemon: it holds the single-instance
// lock, drives the render pipeline, and serves the read-only HTTP status API.
package main
