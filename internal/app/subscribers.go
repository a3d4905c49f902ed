package app

import "sync"

// subscribers is an ordered listener list. Listeners run synchronously in
// subscription order on the goroutine that committed the change.
type subscribers[T any] struct {
	mu        sync.Mutex
	nextID    int
	listeners []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

// add registers fn and returns a function that removes it. The returned
// function is safe to call more than once.
func (s *subscribers[T]) add(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener[T]{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *subscribers[T]) publish(v T) {
	s.mu.Lock()
	ls := make([]listener[T], len(s.listeners))
	copy(ls, s.listeners)
	s.mu.Unlock()
	for _, l := range ls {
		l.fn(v)
	}
}

func (s *subscribers[T]) reset() {
	s.mu.Lock()
	s.listeners = nil
	s.mu.Unlock()
}
