package repository

import (
	"context"
	"fmt"

	taskdomain "remindkit/internal/task/domain"
)

// RemoteStore is the shared multi-writer store the reconciliation engine
// pushes to and pulls from. Writes are full-record overwrites; conflict
// resolution happens on the pull side.
type RemoteStore interface {
	// PutPrivate overwrites the task in the owner's private partition
	PutPrivate(ctx context.Context, ownerID string, task *taskdomain.Task) error

	// PutShared overwrites the task's mirror in the shared partition
	PutShared(ctx context.Context, task *taskdomain.Task) error

	// DeleteShared removes the shared-partition mirror (used on unshare)
	DeleteShared(ctx context.Context, taskID string) error

	// FetchOwned returns every record in the owner's private partition,
	// tombstones included
	FetchOwned(ctx context.Context, ownerID string) ([]*taskdomain.Task, error)

	// FetchSharedWith returns every shared-partition record whose
	// sharedWith set contains the given identity
	FetchSharedWith(ctx context.Context, userID string) ([]*taskdomain.Task, error)
}

// TransportError marks a remote failure. Local state stays authoritative;
// callers retry on their own policy and never treat this as data loss.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sync transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
