// Package session tracks open character sessions, serialises writers per
// character, and carries each session's live combat state.
package session

import (
	"fmt"
	"sync"
)

// Feed routes combat log lines to a subscriber over a buffered channel.
type Feed struct {
	characterID int64
	events      chan string
	mu          sync.Mutex
	closed      bool
}

// NewFeed creates a Feed for the given character.
//
// Postcondition: Returns a Feed with an open events channel.
func NewFeed(characterID int64, bufferSize int) *Feed {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Feed{
		characterID: characterID,
		events:      make(chan string, bufferSize),
	}
}

// CharacterID returns the character the feed belongs to.
func (f *Feed) CharacterID() int64 {
	return f.characterID
}

// Push enqueues line without blocking.
//
// Postcondition: line is enqueued, or an error if the feed is closed or full.
func (f *Feed) Push(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return fmt.Errorf("feed %d is closed", f.characterID)
	}
	select {
	case f.events <- line:
		return nil
	default:
		return fmt.Errorf("feed %d event buffer full", f.characterID)
	}
}

// Events returns the read-only events channel.
func (f *Feed) Events() <-chan string {
	return f.events
}

// Close marks the feed as closed and closes the events channel.
//
// Postcondition: Further Push calls return an error.
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		close(f.events)
	}
	return nil
}

// IsClosed reports whether the feed has been closed.
func (f *Feed) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
