package store

import "sync"

// Singleton wraps a single aggregate value, such as the profile or the site
// content. The value is replaced wholesale on every change.
type Singleton[T any] struct {
	mu    sync.RWMutex
	value T
	subs  []func()
}

// NewSingleton builds a singleton seeded with an initial value.
func NewSingleton[T any](initial T) *Singleton[T] {
	return &Singleton[T]{value: initial}
}

// Subscribe registers a callback invoked after every committed change,
// outside the lock.
func (s *Singleton[T]) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Singleton[T]) notify() {
	s.mu.RLock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn()
	}
}

// Get returns the current value.
func (s *Singleton[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value.
func (s *Singleton[T]) Set(value T) {
	s.mu.Lock()
	s.value = value
	s.mu.Unlock()
	s.notify()
}

// Update applies a transform to the current value and commits the result.
func (s *Singleton[T]) Update(apply func(T) T) {
	s.mu.Lock()
	s.value = apply(s.value)
	s.mu.Unlock()
	s.notify()
}
