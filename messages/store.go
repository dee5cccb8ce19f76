package messages

import "sync"

// Store is an ordered, in-session message list. It is mutated from both
// UI code and streaming session callbacks, so every operation takes the
// store lock.
type Store struct {
	mu   sync.Mutex
	list []Message
}

// NewStore returns an empty message store.
func NewStore() *Store {
	return &Store{}
}

// Append adds a message and returns it unchanged.
func (s *Store) Append(msg Message) Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = append(s.list, msg)
	return msg
}

// Update replaces the message with the given id. Returns false when no
// message has that id.
func (s *Store) Update(id string, msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.list {
		if existing.ID == id {
			msg.ID = id
			msg.CreatedAt = existing.CreatedAt
			s.list[i] = msg
			return true
		}
	}
	return false
}

// Delete removes the message with the given id. Returns false when no
// message has that id.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.list {
		if existing.ID == id {
			s.list = append(s.list[:i], s.list[i+1:]...)
			return true
		}
	}
	return false
}

// Clear removes every message.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = nil
}

// List returns a snapshot copy of all messages in insertion order.
func (s *Store) List() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.list...)
}

// Len returns the number of stored messages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}
