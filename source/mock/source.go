// Package mock provides an in-memory source.Source for tests.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/poiesic/jobtrail/source"
)

// MockSource serves messages from memory in insertion order.
type MockSource struct {
	// ListIDsFunc is called by ListIDs if set.
	ListIDsFunc func(ctx context.Context, filter string) ([]string, error)

	// GetDetailFunc is called by GetDetail if set.
	GetDetailFunc func(ctx context.Context, id string) (*source.Detail, error)

	mu        sync.Mutex
	order     []string
	messages  map[string]*source.Detail
	listCalls int
	detailIDs []string
}

var _ source.Source = (*MockSource)(nil)

// NewMockSource creates an empty mailbox.
func NewMockSource() *MockSource {
	return &MockSource{messages: make(map[string]*source.Detail)}
}

// Add appends a message. Adding an existing id replaces its detail.
func (m *MockSource) Add(id string, detail source.Detail) *MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.messages[id]; !ok {
		m.order = append(m.order, id)
	}
	m.messages[id] = &detail
	return m
}

// ListIDs returns every message id in insertion order.
func (m *MockSource) ListIDs(ctx context.Context, filter string) ([]string, error) {
	m.mu.Lock()
	m.listCalls++
	ids := append([]string(nil), m.order...)
	m.mu.Unlock()

	if m.ListIDsFunc != nil {
		return m.ListIDsFunc(ctx, filter)
	}
	return ids, nil
}

// GetDetail returns a copy of the stored message.
func (m *MockSource) GetDetail(ctx context.Context, id string) (*source.Detail, error) {
	m.mu.Lock()
	m.detailIDs = append(m.detailIDs, id)
	detail, ok := m.messages[id]
	m.mu.Unlock()

	if m.GetDetailFunc != nil {
		return m.GetDetailFunc(ctx, id)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrMessageNotFound, id)
	}
	out := *detail
	return &out, nil
}

// ListCalls returns the number of ListIDs calls.
func (m *MockSource) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

// DetailIDs returns the ids passed to GetDetail, in call order.
func (m *MockSource) DetailIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.detailIDs...)
}

// Reset clears recorded calls.
func (m *MockSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls = 0
	m.detailIDs = nil
}
