package usecase

import (
	"context"
	"io"

	syncdomain "remindkit/internal/sync/domain"
	taskdomain "remindkit/internal/task/domain"
)

// SyncUsecase is the reconciliation engine: it keeps the local store and
// the remote store eventually consistent under sharing and soft-delete.
type SyncUsecase interface {
	// Push writes the task to the owner-private remote partition and, when
	// shared, mirrors it to the shared partition. An empty sharedWith set
	// also clears any stale shared mirror. No-op for signed-out sessions.
	Push(ctx context.Context, session syncdomain.Session, task *taskdomain.Task) error

	// PushAsync runs Push on a background goroutine. The originating local
	// mutation is already durable; a failed push is logged and retried on
	// the next sync pass, never rolled back.
	PushAsync(session syncdomain.Session, task *taskdomain.Task)

	// PushAll pushes every local record, tombstones included, so writes
	// whose fire-and-forget push failed still reach the remote partitions.
	// Per-record failures are logged and skipped. No-op when signed out.
	PushAll(ctx context.Context, session syncdomain.Session) error

	// Pull fetches every record the session's identity can see (owned plus
	// shared-with) and merges each one into the local store with
	// last-writer-wins by version, then updatedAt. A winning remote
	// tombstone hard-removes the local record.
	Pull(ctx context.Context, session syncdomain.Session) (*syncdomain.PullStats, error)

	// ExportJSON writes the backup envelope for every live task
	ExportJSON(w io.Writer) error

	// ExportCSV writes one row per live task in the fixed column set
	ExportCSV(w io.Writer) error

	// Import merges a backup batch under the given duplicate policy.
	// Malformed records are collected as errors; the batch proceeds.
	Import(r io.Reader, policy syncdomain.DuplicateHandling) (*syncdomain.ImportResult, error)
}
