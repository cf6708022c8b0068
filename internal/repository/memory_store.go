package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tkmproject/tkm-api/internal/models"
)

// MemoryStore is a process-local mirror store. Subscribers receive
// snapshots synchronously on every write.
type MemoryStore struct {
	mu          sync.Mutex
	docs        map[string][]models.Document
	subscribers map[string]map[int]func([]models.Document)
	nextID      int
	now         func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:        map[string][]models.Document{},
		subscribers: map[string]map[int]func([]models.Document){},
		now:         time.Now,
	}
}

// Insert appends a document and pushes the new snapshot to subscribers.
func (s *MemoryStore) Insert(_ context.Context, collection string, data map[string]interface{}) (*models.Document, error) {
	doc := models.Document{
		ID:          uuid.NewString(),
		Collection:  collection,
		Data:        data,
		Status:      models.StatusNew,
		SubmittedAt: s.now(),
	}

	s.mu.Lock()
	s.docs[collection] = append(s.docs[collection], doc)
	snapshot := s.snapshotLocked(collection)
	subs := s.subscribersLocked(collection)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return &doc, nil
}

// Snapshot returns the collection newest first.
func (s *MemoryStore) Snapshot(_ context.Context, collection string) ([]models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(collection), nil
}

// Collection returns a subscribable view of one collection.
func (s *MemoryStore) Collection(name string) *MemoryCollection {
	return &MemoryCollection{store: s, name: name}
}

func (s *MemoryStore) snapshotLocked(collection string) []models.Document {
	out := make([]models.Document, len(s.docs[collection]))
	copy(out, s.docs[collection])
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

func (s *MemoryStore) subscribersLocked(collection string) []func([]models.Document) {
	subs := make([]func([]models.Document), 0, len(s.subscribers[collection]))
	for _, fn := range s.subscribers[collection] {
		subs = append(subs, fn)
	}
	return subs
}

// MemoryCollection is one collection of a MemoryStore.
type MemoryCollection struct {
	store *MemoryStore
	name  string
}

// Name returns the collection name.
func (c *MemoryCollection) Name() string {
	return c.name
}

// Subscribe registers onSnapshot and delivers the current snapshot immediately.
func (c *MemoryCollection) Subscribe(onSnapshot func([]models.Document), _ func(error)) func() {
	s := c.store
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	if s.subscribers[c.name] == nil {
		s.subscribers[c.name] = map[int]func([]models.Document){}
	}
	s.subscribers[c.name][id] = onSnapshot
	snapshot := s.snapshotLocked(c.name)
	s.mu.Unlock()

	onSnapshot(snapshot)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers[c.name], id)
			s.mu.Unlock()
		})
	}
}
