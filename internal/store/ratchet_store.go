package store

import (
	"path/filepath"
	"sync"

	"hushwire/internal/domain"
)

const conversationsFile = "conversations.json"

// RatchetFileStore persists per-peer Double-Ratchet state to disk. The
// serialized state round-trips every field, including the skipped-key cache,
// so out-of-order messages survive a restart.
type RatchetFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewRatchetFileStore returns a RatchetFileStore rooted at dir.
func NewRatchetFileStore(dir string) *RatchetFileStore {
	return &RatchetFileStore{dir: dir}
}

// SaveConversation writes the Conversation for peer.
func (s *RatchetFileStore) SaveConversation(peer domain.ConversationID, conv domain.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, conversationsFile)
	m := map[domain.ConversationID]domain.Conversation{}
	_ = readJSON(path, &m)
	m[peer] = conv
	return writeJSON(path, m, 0o600)
}

// LoadConversation retrieves the Conversation for peer.
func (s *RatchetFileStore) LoadConversation(peer domain.ConversationID) (domain.Conversation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, conversationsFile)
	m := map[domain.ConversationID]domain.Conversation{}
	if err := readJSON(path, &m); err != nil {
		return domain.Conversation{}, false, err
	}
	c, ok := m[peer]
	return c, ok, nil
}

// DeleteConversation removes the ratchet state for peer, if any.
func (s *RatchetFileStore) DeleteConversation(peer domain.ConversationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, conversationsFile)
	m := map[domain.ConversationID]domain.Conversation{}
	if err := readJSON(path, &m); err != nil {
		return err
	}
	if _, ok := m[peer]; !ok {
		return nil
	}
	delete(m, peer)
	return writeJSON(path, m, 0o600)
}

// Compile-time assertion that RatchetFileStore implements domain.RatchetStore.
var _ domain.RatchetStore = (*RatchetFileStore)(nil)
