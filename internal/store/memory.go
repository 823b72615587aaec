package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. Nothing survives Close.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

type memoryBlob struct {
	data      []byte
	revision  int
	updatedAt time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string]memoryBlob)}
}

func (s *MemoryStore) Load(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return append([]byte(nil), b.data...), nil
}

func (s *MemoryStore) Save(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.blobs[name]
	s.blobs[name] = memoryBlob{
		data:      append([]byte(nil), data...),
		revision:  prev.revision + 1,
		updatedAt: time.Now().UTC(),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, name)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]BlobInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]BlobInfo, 0, len(s.blobs))
	for name, b := range s.blobs {
		infos = append(infos, BlobInfo{Name: name, Size: len(b.data), Revision: b.revision, UpdatedAt: b.updatedAt})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

func (s *MemoryStore) Close() error { return nil }
