// SPDX-License-Identifier: Apache-2.0
package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store
type Memory struct {
	mu   sync.RWMutex
	docs map[string]map[string][]byte
}

// NewMemory creates an empty in-process store
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string][]byte)}
}

// Get implements Store
func (m *Memory) Get(_ context.Context, collection, id string, dst any) error {
	m.mu.RLock()
	data, ok := m.docs[collection][id]
	m.mu.RUnlock()
	if !ok {
		return notFound(collection, id)
	}
	return decode(collection, id, data, dst)
}

// Put implements Store
func (m *Memory) Put(_ context.Context, collection, id string, doc any) error {
	data, err := encode(collection, id, doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bucket(collection)[id] = data
	return nil
}

// Create implements Store
func (m *Memory) Create(_ context.Context, collection, id string, doc any) error {
	data, err := encode(collection, id, doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.bucket(collection)
	if _, ok := b[id]; ok {
		return exists(collection, id)
	}
	b[id] = data
	return nil
}

// Exists implements Store
func (m *Memory) Exists(_ context.Context, collection, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.docs[collection][id]
	return ok, nil
}

// Delete implements Store
func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs[collection], id)
	return nil
}

// Close implements Store
func (m *Memory) Close() error {
	return nil
}

// Len returns the number of documents in a collection
func (m *Memory) Len(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs[collection])
}

func (m *Memory) bucket(collection string) map[string][]byte {
	b, ok := m.docs[collection]
	if !ok {
		b = make(map[string][]byte)
		m.docs[collection] = b
	}
	return b
}
