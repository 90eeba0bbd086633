package repository

import (
	"context"
	"errors"
	"maps"
)

// ErrWriteFailed is returned by MemoryKV while write failures are injected
var ErrWriteFailed = errors.New("simulated write failure")

// MemoryKV is an in-process KV used by tests and dry runs
type MemoryKV struct {
	data map[string]string
	// FailWrites makes every write return ErrWriteFailed without changing data
	FailWrites bool
	// Writes counts successful write calls
	Writes int
}

// NewMemoryKV creates an empty MemoryKV
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) All(ctx context.Context) (map[string]string, error) {
	return maps.Clone(m.data), nil
}

func (m *MemoryKV) Put(ctx context.Context, entries map[string]string) error {
	if m.FailWrites {
		return ErrWriteFailed
	}
	maps.Copy(m.data, entries)
	m.Writes++
	return nil
}

func (m *MemoryKV) Replace(ctx context.Context, entries map[string]string) error {
	if m.FailWrites {
		return ErrWriteFailed
	}
	m.data = maps.Clone(entries)
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.Writes++
	return nil
}

func (m *MemoryKV) Clear(ctx context.Context) error {
	if m.FailWrites {
		return ErrWriteFailed
	}
	m.data = make(map[string]string)
	m.Writes++
	return nil
}
