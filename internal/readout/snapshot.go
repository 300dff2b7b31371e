package readout

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Snapshot is the minimal durable state of one activation, overwritten in
// place on every tick and on pause. It lets a restarted process offer
// best-effort resumption within the cap window.
type Snapshot struct {
	TaskID       string        `json:"taskId" gorm:"primaryKey"`
	StartTime    time.Time     `json:"startTime"`
	Interval     time.Duration `json:"interval"`
	ElapsedCount int           `json:"elapsedCount"`
}

// SnapshotStore persists activation snapshots
type SnapshotStore interface {
	Save(s *Snapshot) error
	Delete(taskID string) error
	LoadAll() ([]*Snapshot, error)
}

// gormSnapshotStore keeps snapshots in the same embedded database as tasks
type gormSnapshotStore struct {
	db *gorm.DB
}

// NewGormSnapshotStore creates a GORM-backed SnapshotStore
func NewGormSnapshotStore(db *gorm.DB) (SnapshotStore, error) {
	if err := db.AutoMigrate(&Snapshot{}); err != nil {
		return nil, err
	}
	return &gormSnapshotStore{db: db}, nil
}

func (s *gormSnapshotStore) Save(snap *Snapshot) error {
	return s.db.Save(snap).Error
}

func (s *gormSnapshotStore) Delete(taskID string) error {
	err := s.db.Delete(&Snapshot{}, "task_id = ?", taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (s *gormSnapshotStore) LoadAll() ([]*Snapshot, error) {
	var snaps []*Snapshot
	err := s.db.Find(&snaps).Error
	return snaps, err
}

// memorySnapshotStore backs tests and snapshot-less deployments
type memorySnapshotStore struct {
	snaps map[string]Snapshot
}

// NewMemorySnapshotStore creates a volatile SnapshotStore
func NewMemorySnapshotStore() SnapshotStore {
	return &memorySnapshotStore{snaps: make(map[string]Snapshot)}
}

func (s *memorySnapshotStore) Save(snap *Snapshot) error {
	s.snaps[snap.TaskID] = *snap
	return nil
}

func (s *memorySnapshotStore) Delete(taskID string) error {
	delete(s.snaps, taskID)
	return nil
}

func (s *memorySnapshotStore) LoadAll() ([]*Snapshot, error) {
	out := make([]*Snapshot, 0, len(s.snaps))
	for _, snap := range s.snaps {
		c := snap
		out = append(out, &c)
	}
	return out, nil
}
