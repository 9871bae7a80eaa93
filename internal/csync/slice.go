package csync

import "sync"

// Slice is a mutex-guarded append-mostly slice.
type Slice[T any] struct {
	data []T
	mu   sync.RWMutex
}

// NewSlice creates an empty thread-safe slice.
func NewSlice[T any]() *Slice[T] {
	return &Slice[T]{data: make([]T, 0)}
}

// Append adds elements to the end of the slice.
func (s *Slice[T]) Append(elements ...T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append(s.data, elements...)
}

// Get retrieves the element at index, reporting whether index is valid.
func (s *Slice[T]) Get(index int) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T
	if index < 0 || index >= len(s.data) {
		return zero, false
	}
	return s.data[index], true
}

// Last returns the final element, reporting whether the slice is non-empty.
func (s *Slice[T]) Last() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var zero T
	if len(s.data) == 0 {
		return zero, false
	}
	return s.data[len(s.data)-1], true
}

// Len returns the number of elements.
func (s *Slice[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Clear removes all elements.
func (s *Slice[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = s.data[:0]
}

// Range calls f for each element in order until f returns false.
func (s *Slice[T]) Range(f func(index int, value T) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, value := range s.data {
		if !f(i, value) {
			break
		}
	}
}

// ToSlice returns a copy of the underlying data.
func (s *Slice[T]) ToSlice() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, len(s.data))
	copy(result, s.data)
	return result
}
