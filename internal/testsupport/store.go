package testsupport

import (
	"context"
	"testing"

	"newsreel/internal/config"
	"newsreel/internal/queue"
)

// MustOpenStore opens a queue.Store for tests, failing the test on
// error and closing the store during cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// NewJob enqueues a render job for tests, failing the test on error.
func NewJob(t testing.TB, store *queue.Store, req queue.JobRequest) *queue.Item {
	t.Helper()

	item, err := store.NewJob(context.Background(), req)
	if err != nil {
		t.Fatalf("store.NewJob: %v", err)
	}
	return item
}
