package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wolfman30/leadflow/internal/leads"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("booking: session not found")
	// ErrSessionExists is returned when creating a session whose id is taken.
	ErrSessionExists = errors.New("booking: session already exists")
	// ErrSessionConflict is returned when an update keeps losing to concurrent writers.
	ErrSessionConflict = errors.New("booking: session changed concurrently")
)

// errSkipSave lets an update function finish without writing.
var errSkipSave = errors.New("booking: skip save")

// maxUpdateAttempts bounds optimistic retries in RedisStore.Update.
const maxUpdateAttempts = 5

// Session carries one flow between HTTP requests.
type Session struct {
	ID           string                  `json:"id"`
	SiteID       string                  `json:"site_id"`
	State        State                   `json:"state"`
	Form         leads.FormData          `json:"form"`
	Context      leads.InvocationContext `json:"context"`
	ScrollLocked bool                    `json:"scroll_locked"`
	Version      int64                   `json:"version"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// UpdateFunc edits a session copy in place. Returning an error aborts the
// update and nothing is written. It may run more than once and must not have
// side effects outside the session.
type UpdateFunc func(s *Session) error

// SessionStore persists sessions with an expiry. Update is atomic per id:
// concurrent updates of one session are applied one after another, each on
// top of the previous result, and bump Version.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, id string, fn UpdateFunc) (*Session, error)
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Used in development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns a store whose entries expire ttl after their last save.
// A non-positive ttl keeps entries forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return errors.New("booking: session id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live(s.ID); ok {
		return ErrSessionExists
	}
	m.put(*s)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.live(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := entry.session
	return &s, nil
}

// Update runs fn under the store lock, so updates never interleave.
func (m *MemoryStore) Update(_ context.Context, id string, fn UpdateFunc) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.live(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := entry.session
	if err := fn(&s); err != nil {
		if errors.Is(err, errSkipSave) {
			current := entry.session
			return &current, nil
		}
		return nil, err
	}
	s.Version = entry.session.Version + 1
	m.put(s)
	out := s
	return &out, nil
}

// live returns an unexpired entry, dropping an expired one. Callers hold mu.
func (m *MemoryStore) live(id string) (memoryEntry, bool) {
	entry, ok := m.entries[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		delete(m.entries, id)
		return memoryEntry{}, false
	}
	return entry, true
}

func (m *MemoryStore) put(s Session) {
	entry := memoryEntry{session: s}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}
	m.entries[s.ID] = entry
}
