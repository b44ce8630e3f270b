// Package session keeps per-session conversation history in memory.
package session

import (
	"container/list"
	"sync"
	"time"

	"github.com/luminari-dev/lumi-agent/internal/model/chat"
)

const defaultCapacity = 1000

// Store holds message history keyed by session id. The map is bounded: when
// more than capacity sessions exist, the least recently used one is evicted.
// Operations on distinct sessions are independent; the single mutex is cheap
// because appends happen at most once per completed turn.
type Store struct {
	mu       sync.RWMutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
}

type record struct {
	id       string
	messages []chat.Message
}

// NewStore creates a store bounded to capacity sessions. Non-positive
// capacity falls back to the default.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Store{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// History returns a copy of the stored messages for the session, oldest
// first. An unknown session yields nil; sessions come into existence on
// their first completed turn.
func (s *Store) History(sessionID string) []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[sessionID]
	if !ok {
		return nil
	}
	s.order.MoveToFront(elem)

	rec := elem.Value.(*record)
	copied := make([]chat.Message, len(rec.messages))
	copy(copied, rec.messages)
	return copied
}

// AppendTurn records a completed turn as a user/assistant message pair, in
// that order. Callers must only invoke this once the turn produced non-empty
// final text; partial or failed turns never mutate history.
func (s *Store) AppendTurn(sessionID string, userText, assistantText string) {
	now := time.Now().UTC()
	userMsg := chat.Message{Role: chat.RoleUser, Content: userText, CreatedAt: now}
	assistantMsg := chat.Message{Role: chat.RoleAssistant, Content: assistantText, CreatedAt: now}

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[sessionID]
	if !ok {
		elem = s.order.PushFront(&record{id: sessionID, messages: make([]chat.Message, 0, 8)})
		s.entries[sessionID] = elem
		s.evictLocked()
	} else {
		s.order.MoveToFront(elem)
	}

	rec := elem.Value.(*record)
	rec.messages = append(rec.messages, userMsg, assistantMsg)
}

// Len reports how many sessions are currently stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) evictLocked() {
	for len(s.entries) > s.capacity {
		oldest := s.order.Back()
		if oldest == nil {
			return
		}
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(*record).id)
	}
}
