package state

import (
	"sync"
	"time"

	"relay-lab/domain"
)

// ChatStore maps chat IDs to their descriptor and bounded message history.
// Chats are never destroyed in-process. History retains only the most recent
// historyLimit messages, oldest evicted first, ordered by acceptance.
type ChatStore struct {
	mu           sync.RWMutex
	historyLimit int
	chats        map[string]*chatEntry
}

// chatEntry guards one chat's history with its own lock so that concurrent
// appends to different chats never contend.
type chatEntry struct {
	mu        sync.Mutex
	desc      domain.ChatDescriptor
	createdAt time.Time
	messages  []domain.Message
}

func NewChatStore(historyLimit int) *ChatStore {
	return &ChatStore{
		historyLimit: historyLimit,
		chats:        make(map[string]*chatEntry),
	}
}

// CreateIfAbsent atomically checks for chatID and inserts a fresh record when
// missing. Concurrent creates of the same new chat yield exactly one record;
// losers receive the existing record unchanged and created=false.
func (s *ChatStore) CreateIfAbsent(desc domain.ChatDescriptor, now time.Time) (domain.Chat, bool) {
	s.mu.Lock()
	if existing, ok := s.chats[desc.ID]; ok {
		s.mu.Unlock()
		return existing.snapshot(), false
	}
	entry := &chatEntry{desc: desc.Clone(), createdAt: now}
	s.chats[desc.ID] = entry
	s.mu.Unlock()

	return entry.snapshot(), true
}

// Get returns a snapshot of the chat, detached from the live record.
func (s *ChatStore) Get(chatID string) (domain.Chat, bool) {
	s.mu.RLock()
	entry, ok := s.chats[chatID]
	s.mu.RUnlock()
	if !ok {
		return domain.Chat{}, false
	}
	return entry.snapshot(), true
}

// AppendMessage appends to the chat's history and truncates it to the most
// recent historyLimit entries. Returns false when the chat is absent.
// Acceptance order under concurrent appends is the history order.
func (s *ChatStore) AppendMessage(chatID string, msg domain.Message) bool {
	s.mu.RLock()
	entry, ok := s.chats[chatID]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.messages = append(entry.messages, msg)
	if len(entry.messages) > s.historyLimit {
		trimmed := make([]domain.Message, s.historyLimit)
		copy(trimmed, entry.messages[len(entry.messages)-s.historyLimit:])
		entry.messages = trimmed
	}
	return true
}

func (s *ChatStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats)
}

func (e *chatEntry) snapshot() domain.Chat {
	e.mu.Lock()
	defer e.mu.Unlock()

	messages := make([]domain.Message, len(e.messages))
	copy(messages, e.messages)
	return domain.Chat{
		ChatDescriptor: e.desc.Clone(),
		Messages:       messages,
		CreatedAt:      e.createdAt,
	}
}
