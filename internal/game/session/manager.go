package session

import (
	"fmt"
	"sync"

	"github.com/cory-johannsen/inkquest/internal/game/combat"
)

// PlayerSession is one open character. Combat is only read or written while
// the character's lock is held.
type PlayerSession struct {
	// CharacterID is the database ID of the character.
	CharacterID int64
	// CharName is the character display name.
	CharName string
	// Combat is the live encounter state.
	Combat combat.Session
	// Feed carries new combat log lines to the client.
	Feed *Feed
}

// Manager tracks open sessions and owns one writer lock per character.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*PlayerSession
	locks    map[int64]*sync.Mutex
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[int64]*PlayerSession),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Open registers a session for the character in area selection.
//
// Precondition: characterID must be > 0 and charName non-empty.
// Postcondition: Returns the created session, or an error if the character is already open.
func (m *Manager) Open(characterID int64, charName string) (*PlayerSession, error) {
	if characterID <= 0 || charName == "" {
		return nil, fmt.Errorf("session: invalid character %d %q", characterID, charName)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[characterID]; exists {
		return nil, fmt.Errorf("character %d already has an open session", characterID)
	}
	sess := &PlayerSession{
		CharacterID: characterID,
		CharName:    charName,
		Combat:      combat.NewSession(),
		Feed:        NewFeed(characterID, 64),
	}
	m.sessions[characterID] = sess
	return sess, nil
}

// Close removes the session and closes its feed.
//
// Postcondition: Returns an error if the character has no open session.
func (m *Manager) Close(characterID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[characterID]
	if !exists {
		return fmt.Errorf("character %d has no open session", characterID)
	}
	_ = sess.Feed.Close()
	delete(m.sessions, characterID)
	return nil
}

// Get returns the open session for the character.
func (m *Manager) Get(characterID int64) (*PlayerSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[characterID]
	return sess, ok
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Lock acquires the writer lock for the character and returns its release
// function. Locks exist for any character ID, open or not, so that
// out-of-combat writes serialise with combat.
//
// Postcondition: at most one caller holds the lock for a character at a time.
func (m *Manager) Lock(characterID int64) (unlock func()) {
	m.mu.Lock()
	l, ok := m.locks[characterID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[characterID] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}
