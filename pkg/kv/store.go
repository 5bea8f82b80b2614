// Package kv provides a generic thread-safe key-value store.
package kv

import "sync"

// Store is a thread-safe generic key-value store.
type Store[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// New creates a new key-value store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		data: make(map[K]V),
	}
}

// Get retrieves a value by key.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[key]
	return val, ok
}

// Set stores a value by key.
func (s *Store[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// GetOrCreate returns the value for key, creating it with create when
// absent. create runs under the write lock and must not touch the store.
func (s *Store[K, V]) GetOrCreate(key K, create func() (V, error)) (V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if val, ok := s.data[key]; ok {
		return val, false, nil
	}
	val, err := create()
	if err != nil {
		var zero V
		return zero, false, err
	}
	s.data[key] = val
	return val, true, nil
}

// Take removes key and returns its value.
func (s *Store[K, V]) Take(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[key]
	if ok {
		delete(s.data, key)
	}
	return val, ok
}

// DeleteFunc removes every entry for which fn returns true and returns the
// removed values.
func (s *Store[K, V]) DeleteFunc(fn func(K, V) bool) []V {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []V
	for k, v := range s.data {
		if fn(k, v) {
			removed = append(removed, v)
			delete(s.data, k)
		}
	}
	return removed
}

// Drain removes all entries and returns their values.
func (s *Store[K, V]) Drain() []V {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]V, 0, len(s.data))
	for _, v := range s.data {
		out = append(out, v)
	}
	s.data = make(map[K]V)
	return out
}

// Values returns all values in the store.
func (s *Store[K, V]) Values() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]V, 0, len(s.data))
	for _, v := range s.data {
		out = append(out, v)
	}
	return out
}

// Len returns the number of items in the store.
func (s *Store[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Keys returns all keys in the store.
func (s *Store[K, V]) Keys() []K {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]K, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
