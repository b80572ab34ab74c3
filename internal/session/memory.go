package session

import (
	"context"
	"sync"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

// MemoryStore keeps the serialized record in process memory. It stores
// bytes rather than the struct so it behaves like the persistent stores,
// including on malformed content.
type MemoryStore struct {
	mu   sync.Mutex
	data []byte
	err  error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Fail makes every later call return err until Fail(nil).
func (s *MemoryStore) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Put stores raw bytes in the slot as-is.
func (s *MemoryStore) Put(raw []byte) {
	s.mu.Lock()
	s.data = append([]byte(nil), raw...)
	s.mu.Unlock()
}

func (s *MemoryStore) Save(_ context.Context, u model.User) error {
	b, err := encodeUser(u)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.data = b
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return model.User{}, s.err
	}
	if s.data == nil {
		return model.User{}, ErrNoSession
	}
	return decodeUser(s.data)
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.data = nil
	return nil
}
