package credentials

import (
	"sync"
)

var _ Store = (*InMemoryStore)(nil)

// InMemoryStore keeps credentials for the lifetime of the process. Several session
// controllers sharing one InMemoryStore behave like several tabs sharing storage.
type InMemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	events *broadcaster
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		values: make(map[string]string),
		events: newBroadcaster(),
	}
}

func (s *InMemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *InMemoryStore) Set(key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()

	s.events.publish(ChangeEvent{Key: key, Value: value})
	return nil
}

func (s *InMemoryStore) Remove(key string) error {
	s.mu.Lock()
	_, existed := s.values[key]
	delete(s.values, key)
	s.mu.Unlock()

	if existed {
		s.events.publish(ChangeEvent{Key: key, Removed: true})
	}
	return nil
}

func (s *InMemoryStore) SetSession(set CredentialSet) error {
	values, err := encodeSession(set)
	if err != nil {
		return err
	}

	s.mu.Lock()
	events := make([]ChangeEvent, 0, len(SessionKeys))
	for _, k := range SessionKeys {
		s.values[k] = values[k]
		events = append(events, ChangeEvent{Key: k, Value: values[k]})
	}
	s.mu.Unlock()

	s.events.publish(events...)
	return nil
}

func (s *InMemoryStore) ClearSession() error {
	s.mu.Lock()
	events := make([]ChangeEvent, 0, len(SessionKeys))
	for _, k := range SessionKeys {
		if _, ok := s.values[k]; ok {
			delete(s.values, k)
			events = append(events, ChangeEvent{Key: k, Removed: true})
		}
	}
	s.mu.Unlock()

	s.events.publish(events...)
	return nil
}

func (s *InMemoryStore) Subscribe() (<-chan ChangeEvent, func()) {
	return s.events.subscribe()
}
