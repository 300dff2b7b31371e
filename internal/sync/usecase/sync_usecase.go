package usecase

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	syncdomain "remindkit/internal/sync/domain"
	syncrepo "remindkit/internal/sync/repository"
	taskdomain "remindkit/internal/task/domain"
	taskrepo "remindkit/internal/task/repository"
)

// syncUsecase implements SyncUsecase
type syncUsecase struct {
	local  taskrepo.LocalStore
	remote syncrepo.RemoteStore
	log    *logrus.Entry

	pushTimeout time.Duration
}

// NewSyncUsecase creates the reconciliation engine over a local and a
// remote store
func NewSyncUsecase(local taskrepo.LocalStore, remote syncrepo.RemoteStore, log *logrus.Logger) SyncUsecase {
	return &syncUsecase{
		local:       local,
		remote:      remote,
		log:         log.WithField("component", "sync"),
		pushTimeout: 30 * time.Second,
	}
}

func (u *syncUsecase) Push(ctx context.Context, session syncdomain.Session, task *taskdomain.Task) error {
	if !session.SignedIn {
		return nil
	}
	if err := u.remote.PutPrivate(ctx, task.OwnerID, task); err != nil {
		return err
	}
	if task.IsShared {
		return u.remote.PutShared(ctx, task)
	}
	// Clearing sharedWith must remove the mirror; deleting an absent doc
	// is a no-op, so this is safe to do on every unshared push.
	return u.remote.DeleteShared(ctx, task.ID)
}

func (u *syncUsecase) PushAsync(session syncdomain.Session, task *taskdomain.Task) {
	if !session.SignedIn {
		return
	}
	snapshot := task.Clone()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), u.pushTimeout)
		defer cancel()
		if err := u.Push(ctx, session, snapshot); err != nil {
			u.log.WithField("taskId", snapshot.ID).WithError(err).
				Warn("push failed, local state remains authoritative")
		}
	}()
}

func (u *syncUsecase) PushAll(ctx context.Context, session syncdomain.Session) error {
	if !session.SignedIn {
		return nil
	}
	tasks, err := u.local.ListAll()
	if err != nil {
		return err
	}
	for _, task := range tasks {
		if err := u.Push(ctx, session, task); err != nil {
			u.log.WithField("taskId", task.ID).WithError(err).
				Warn("push failed, record stays local until the next pass")
		}
	}
	return nil
}

func (u *syncUsecase) Pull(ctx context.Context, session syncdomain.Session) (*syncdomain.PullStats, error) {
	if !session.SignedIn {
		return &syncdomain.PullStats{}, nil
	}

	owned, err := u.remote.FetchOwned(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	shared, err := u.remote.FetchSharedWith(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	// The same id can arrive twice (private partition plus shared mirror,
	// or a tombstone next to a stale copy). Reduce to one winner per id
	// first so a stale copy can never be applied after its tombstone.
	winners := make(map[string]*taskdomain.Task)
	order := make([]string, 0, len(owned)+len(shared))
	fetched := 0
	for _, remote := range append(owned, shared...) {
		fetched++
		current, ok := winners[remote.ID]
		if !ok {
			winners[remote.ID] = remote
			order = append(order, remote.ID)
			continue
		}
		winners[remote.ID] = pickRemoteWinner(current, remote)
	}

	stats := &syncdomain.PullStats{Fetched: fetched}
	for _, id := range order {
		remote := winners[id]
		outcome, err := u.mergeOne(remote)
		if err != nil {
			u.log.WithField("taskId", remote.ID).WithError(err).Warn("merge failed, record skipped")
			continue
		}
		switch outcome {
		case syncdomain.MergeInserted:
			stats.Inserted++
		case syncdomain.MergeRemoteWins:
			stats.RemoteWins++
		case syncdomain.MergeLocalKept:
			stats.LocalKept++
		case syncdomain.MergeTombstoned:
			stats.Removed++
		}
	}

	u.log.WithFields(logrus.Fields{
		"fetched":  stats.Fetched,
		"inserted": stats.Inserted,
		"removed":  stats.Removed,
	}).Info("pull merge complete")
	return stats, nil
}

// mergeOne reconciles a single remote record against the local copy with
// the same id. The decision runs under the record's id lock so concurrent
// local writes cannot interleave with the compare-and-swap.
func (u *syncUsecase) mergeOne(remote *taskdomain.Task) (syncdomain.MergeOutcome, error) {
	outcome := syncdomain.MergeLocalKept
	err := u.local.UpdateWithLock(remote.ID, func(local *taskdomain.Task) (*taskdomain.Task, error) {
		if local == nil {
			if remote.Deleted {
				// A tombstone for a record we never had; nothing to remove.
				outcome = syncdomain.MergeLocalKept
				return nil, nil
			}
			outcome = syncdomain.MergeInserted
			return remote.Clone(), nil
		}
		if !remoteWins(local, remote) {
			outcome = syncdomain.MergeLocalKept
			return nil, nil
		}
		if remote.Deleted {
			outcome = syncdomain.MergeTombstoned
			return remote.Clone(), nil
		}
		outcome = syncdomain.MergeRemoteWins
		return remote.Clone(), nil
	})
	if err != nil {
		return outcome, err
	}
	// Tombstones are terminal: the winning remote tombstone is persisted
	// above (so the version comparison saw it), then hard-removed here.
	if outcome == syncdomain.MergeTombstoned {
		if err := u.local.Delete(remote.ID); err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}

// pickRemoteWinner reduces two remote copies of the same record to one
// using the same last-writer-wins rule the local merge applies. On a
// full tie a tombstone beats a live copy.
func pickRemoteWinner(a, b *taskdomain.Task) *taskdomain.Task {
	if remoteWins(a, b) {
		return b
	}
	if b.Deleted && !a.Deleted && b.Version == a.Version && b.UpdatedAt.Equal(a.UpdatedAt) {
		return b
	}
	return a
}

// remoteWins applies last-writer-wins: strictly higher version wins
// outright; on a version tie the later updatedAt wins; a full tie keeps
// the local record.
func remoteWins(local, remote *taskdomain.Task) bool {
	if remote.Version != local.Version {
		return remote.Version > local.Version
	}
	return remote.UpdatedAt.After(local.UpdatedAt)
}
