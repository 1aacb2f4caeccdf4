package document

import (
	"bytes"
	"context"
	"sync"
)

// MemoryBackend keeps the document in process memory. Used by tests and the "memory" storage driver.
type MemoryBackend struct {
	name string

	mu   sync.RWMutex
	data []byte
	set  bool
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend returns an empty backend; the document does not exist until the first Write.
func NewMemoryBackend(name string) *MemoryBackend {
	return &MemoryBackend{name: name}
}

// NewMemoryBackendWith returns a backend that already holds data.
func NewMemoryBackendWith(name string, data []byte) *MemoryBackend {
	return &MemoryBackend{name: name, data: bytes.Clone(data), set: true}
}

func (b *MemoryBackend) Name() string {
	return "memory:" + b.name
}

func (b *MemoryBackend) Exists(_ context.Context) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.set, nil
}

func (b *MemoryBackend) Read(_ context.Context) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.set {
		return nil, ErrNotExist
	}
	return bytes.Clone(b.data), nil
}

func (b *MemoryBackend) Write(_ context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = bytes.Clone(data)
	b.set = true
	return nil
}
