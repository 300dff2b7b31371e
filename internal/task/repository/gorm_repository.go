package repository

import (
	"errors"
	"sync"

	"gorm.io/gorm"

	"remindkit/internal/task/domain"
)

// gormLocalStore implements LocalStore on an embedded sqlite database
type gormLocalStore struct {
	db *gorm.DB

	// one mutex per task id; cross-id operations never contend
	locks sync.Map

	watchMu  sync.Mutex
	watchers map[int]chan ChangeEvent
	nextSub  int
}

// NewGormLocalStore creates a GORM-backed LocalStore
func NewGormLocalStore(db *gorm.DB) (LocalStore, error) {
	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		return nil, err
	}
	return &gormLocalStore{
		db:       db,
		watchers: make(map[int]chan ChangeEvent),
	}, nil
}

func (s *gormLocalStore) lockFor(id string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *gormLocalStore) Get(id string) (*domain.Task, error) {
	var task domain.Task
	err := s.db.Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

func (s *gormLocalStore) Put(task *domain.Task) error {
	mu := s.lockFor(task.ID)
	mu.Lock()
	defer mu.Unlock()
	return s.putLocked(task)
}

// putLocked stores the record and broadcasts; the id lock must be held
func (s *gormLocalStore) putLocked(task *domain.Task) error {
	existing, err := s.Get(task.ID)
	if err != nil {
		return err
	}
	if err := s.db.Save(task).Error; err != nil {
		return err
	}
	evt := ChangeEvent{Type: ChangeCreated, TaskID: task.ID, Task: task.Clone()}
	if existing != nil {
		evt.Type = ChangeUpdated
	}
	s.broadcast(evt)
	return nil
}

func (s *gormLocalStore) Delete(id string) error {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	res := s.db.Delete(&domain.Task{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		s.broadcast(ChangeEvent{Type: ChangeDeleted, TaskID: id})
	}
	return nil
}

func (s *gormLocalStore) List() ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.db.Where("deleted = ?", false).
		Order("CASE WHEN due_at IS NULL THEN 1 ELSE 0 END, due_at ASC, created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (s *gormLocalStore) ListAll() ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := s.db.Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (s *gormLocalStore) UpdateWithLock(id string, fn func(current *domain.Task) (*domain.Task, error)) error {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	current, err := s.Get(id)
	if err != nil {
		return err
	}
	if current != nil {
		current = current.Clone()
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	return s.putLocked(next)
}

func (s *gormLocalStore) Watch(buffer int) (<-chan ChangeEvent, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan ChangeEvent, buffer)

	s.watchMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.watchers[id] = ch
	s.watchMu.Unlock()

	cancel := func() {
		s.watchMu.Lock()
		if sub, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(sub)
		}
		s.watchMu.Unlock()
	}
	return ch, cancel
}

func (s *gormLocalStore) broadcast(evt ChangeEvent) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, ch := range s.watchers {
		select {
		case ch <- evt:
		default: // drop instead of blocking the mutation path
		}
	}
}
