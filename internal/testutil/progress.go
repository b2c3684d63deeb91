// Package testutil provides test utilities for progress tracking.
package testutil

import "sync"

// MockProgressTracker is a mock implementation of ProgressTracker for testing.
type MockProgressTracker struct {
	mu             sync.Mutex
	UpdateCalled   bool
	CompleteCalled bool
	ErrorCalled    bool
	LastStaged     int64
	LastTotal      int64
	LastError      error
}

// Update records a progress update. Updates may arrive out of order from
// concurrent workers, so only the high-water mark is kept.
func (m *MockProgressTracker) Update(resourcesStaged, totalResources int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalled = true
	if resourcesStaged > m.LastStaged {
		m.LastStaged = resourcesStaged
	}
	m.LastTotal = totalResources
}

// Complete marks the batch as complete.
func (m *MockProgressTracker) Complete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteCalled = true
}

// Error records a batch failure.
func (m *MockProgressTracker) Error(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCalled = true
	m.LastError = err
}
