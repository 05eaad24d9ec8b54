// Package queue persists render jobs in SQLite and tracks their progress
// through the pipeline lifecycle. The store is the single source of truth
// for job state: stages read an item, do their work, and write the item
// back with the next status. Interrupted work is recovered by rolling
// in-flight statuses back to the start of their stage.
package queue
