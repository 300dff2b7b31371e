package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	syncdomain "remindkit/internal/sync/domain"
	syncrepo "remindkit/internal/sync/repository"
	syncusecase "remindkit/internal/sync/usecase"
	taskdomain "remindkit/internal/task/domain"
	"remindkit/internal/task/repository"
)

func newWatchedStore(t *testing.T) repository.LocalStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	store, err := repository.NewGormLocalStore(db)
	require.NoError(t, err)
	return store
}

// alarmArmed reads the platform under its lock; the watch bridge mutates
// it from another goroutine.
func alarmArmed(p *MemoryPlatform, alarmID int32) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.Scheduled[alarmID]
	return ok
}

func armedAlarm(p *MemoryPlatform, alarmID int32) (MemoryAlarm, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	alarm, ok := p.Scheduled[alarmID]
	return alarm, ok
}

func marshalBackup(t *testing.T, backup syncusecase.Backup) io.Reader {
	t.Helper()
	raw, err := json.Marshal(backup)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func TestWatchStoreTracksDirectStoreWrites(t *testing.T) {
	store := newWatchedStore(t)
	platform := NewMemoryPlatform()
	adapter := NewAdapter(platform, (&firedSink{}).fire, quietLogger())
	stop := adapter.WatchStore(store)
	defer stop()

	due := time.Now().Add(2 * time.Hour)
	task := reminderTask("t1", due)
	require.NoError(t, store.Put(task))

	alarmID := DeriveAlarmID("t1")
	assert.Eventually(t, func() bool {
		return alarmArmed(platform, alarmID)
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, store.Delete("t1"))
	assert.Eventually(t, func() bool {
		return !alarmArmed(platform, alarmID)
	}, time.Second, 10*time.Millisecond)
}

func TestWatchStoreStopEndsSubscription(t *testing.T) {
	store := newWatchedStore(t)
	platform := NewMemoryPlatform()
	adapter := NewAdapter(platform, (&firedSink{}).fire, quietLogger())

	stop := adapter.WatchStore(store)
	stop()

	require.NoError(t, store.Put(reminderTask("t1", time.Now().Add(2*time.Hour))))
	time.Sleep(50 * time.Millisecond)
	assert.False(t, alarmArmed(platform, DeriveAlarmID("t1")))
}

func TestPullMergedTaskArmsAlarm(t *testing.T) {
	// A reminder created on another device arrives through pull-merge,
	// never through the task usecase; its alarm must still be armed.
	store := newWatchedStore(t)
	platform := NewMemoryPlatform()
	adapter := NewAdapter(platform, (&firedSink{}).fire, quietLogger())
	stop := adapter.WatchStore(store)
	defer stop()

	remote := syncrepo.NewMemoryRemoteStore()
	syncUc := syncusecase.NewSyncUsecase(store, remote, quietLogger())
	sess := syncdomain.SignedIn("alice")
	ctx := context.Background()

	due := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	incoming := reminderTask("t1", due)
	incoming.Version = 1
	incoming.UpdatedAt = time.Now().UTC()
	require.NoError(t, remote.PutPrivate(ctx, "alice", incoming))

	_, err := syncUc.Pull(ctx, sess)
	require.NoError(t, err)

	alarmID := DeriveAlarmID("t1")
	assert.Eventually(t, func() bool {
		return alarmArmed(platform, alarmID)
	}, time.Second, 10*time.Millisecond)

	alarm, ok := armedAlarm(platform, alarmID)
	require.True(t, ok)
	assert.True(t, alarm.FireAt.Equal(due.Add(-10*time.Minute)))
}

func TestPullMergedTombstoneDisarmsAlarm(t *testing.T) {
	store := newWatchedStore(t)
	platform := NewMemoryPlatform()
	adapter := NewAdapter(platform, (&firedSink{}).fire, quietLogger())
	stop := adapter.WatchStore(store)
	defer stop()

	remote := syncrepo.NewMemoryRemoteStore()
	syncUc := syncusecase.NewSyncUsecase(store, remote, quietLogger())
	sess := syncdomain.SignedIn("alice")
	ctx := context.Background()

	live := reminderTask("t1", time.Now().Add(2*time.Hour))
	live.Version = 1
	live.UpdatedAt = time.Now().UTC()
	require.NoError(t, remote.PutPrivate(ctx, "alice", live))

	_, err := syncUc.Pull(ctx, sess)
	require.NoError(t, err)
	alarmID := DeriveAlarmID("t1")
	require.Eventually(t, func() bool {
		return alarmArmed(platform, alarmID)
	}, time.Second, 10*time.Millisecond)

	tomb := live.Clone()
	tomb.Deleted = true
	tomb.Version = 2
	tomb.UpdatedAt = time.Now().UTC()
	require.NoError(t, remote.PutPrivate(ctx, "alice", tomb))

	_, err = syncUc.Pull(ctx, sess)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return !alarmArmed(platform, alarmID)
	}, time.Second, 10*time.Millisecond)

	local, err := store.Get("t1")
	require.NoError(t, err)
	assert.Nil(t, local)
}

func TestImportedTaskArmsAlarm(t *testing.T) {
	store := newWatchedStore(t)
	platform := NewMemoryPlatform()
	adapter := NewAdapter(platform, (&firedSink{}).fire, quietLogger())
	stop := adapter.WatchStore(store)
	defer stop()

	syncUc := syncusecase.NewSyncUsecase(store, syncrepo.NewMemoryRemoteStore(), quietLogger())

	due := time.Now().Add(3 * time.Hour)
	backup := syncusecase.Backup{Tasks: []*taskdomain.Task{{
		ID: "imported", Title: "from backup", CreatedAt: time.Now().Add(-time.Hour),
		DueAt: &due, RemindBeforeMinutes: 10,
	}}}
	payload := marshalBackup(t, backup)

	result, err := syncUc.Import(payload, syncdomain.DuplicateSkip)
	require.NoError(t, err)
	require.Equal(t, 1, result.ImportedCount)

	assert.Eventually(t, func() bool {
		return alarmArmed(platform, DeriveAlarmID("imported"))
	}, time.Second, 10*time.Millisecond)
}
