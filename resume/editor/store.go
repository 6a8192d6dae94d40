package editor

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-builder/resume/model"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

const defaultSessionTTL = 2 * time.Hour

// Store keeps editing sessions in memory. Each session owns an independent
// document; nothing is persisted.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*storeEntry
	ttl      time.Duration
	now      func() time.Time
}

type storeEntry struct {
	session  *Session
	lastSeen time.Time
}

// NewStore constructs a Store that expires sessions idle for longer than ttl.
func NewStore(ttl time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Store{
		sessions: make(map[string]*storeEntry),
		ttl:      ttl,
		now:      now,
	}
}

// Create registers a new session owning doc.
func (st *Store) Create(doc model.Document) *Session {
	sess := NewSession(uuid.NewString(), doc, st.now)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[sess.ID()] = &storeEntry{session: sess, lastSeen: st.now()}
	return sess
}

// Get returns the session and marks it as recently used.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	entry, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.lastSeen = st.now()
	return entry.session, nil
}

// Delete discards the session.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops sessions idle for longer than the TTL. Sessions with an
// enhancement in flight are kept until it completes.
func (st *Store) Sweep() int {
	cutoff := st.now().Add(-st.ttl)
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, entry := range st.sessions {
		if entry.lastSeen.After(cutoff) || entry.session.State() == StatePending {
			continue
		}
		delete(st.sessions, id)
		removed++
	}
	return removed
}
