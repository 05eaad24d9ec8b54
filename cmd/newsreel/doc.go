// Command newsreel is the operator CLI: it queues render jobs, inspects and
// manages the queue, runs readiness checks, and can process the queue in the
// foreground without the daemon.
package main
