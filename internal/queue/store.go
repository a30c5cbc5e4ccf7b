package queue

import (
	"sync"
	"time"

	"github.com/noah-isme/pemira/internal/model"
)

// Store is the in-memory, ordered collection of admitted-voter entries
// for one station, newest first. It is owned by a single panel instance;
// the mutex only guards against the panel's background sync loop racing
// an operator request.
//
// Capacity policy: entries in a non-terminal state are always retained
// and their count may never exceed the configured capacity. Terminal
// entries are retained only within the remaining budget and are evicted
// oldest first.
type Store struct {
	mu       sync.Mutex
	capacity int
	entries  []model.QueueEntry
}

// NewStore creates an empty store with the given capacity bound.
func NewStore(capacity int) *Store {
	return &Store{capacity: capacity}
}

// Insert admits a new entry at the head of the queue.
//
// It returns ErrDuplicateVoter when a non-cancelled entry for the same
// voter already exists, and ErrActiveCapacity when the queue already
// holds a full capacity of non-terminal entries; active voters are never
// evicted to make room.
func (s *Store) Insert(entry model.QueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := 0
	for _, e := range s.entries {
		if e.NIM == entry.NIM && e.Status != model.StatusCancelled {
			return ErrDuplicateVoter
		}
		if !e.Status.Terminal() {
			active++
		}
	}
	if !entry.Status.Terminal() && active >= s.capacity {
		return ErrActiveCapacity
	}

	s.entries = append([]model.QueueEntry{entry}, s.entries...)
	s.entries = capEntries(s.entries, s.capacity)
	return nil
}

// capEntries trims terminal entries, oldest first, until the total fits
// the capacity. Entries are ordered newest first, so the tail goes.
func capEntries(entries []model.QueueEntry, capacity int) []model.QueueEntry {
	if len(entries) <= capacity {
		return entries
	}

	active := 0
	for _, e := range entries {
		if !e.Status.Terminal() {
			active++
		}
	}

	allowedTerminal := capacity - active
	if allowedTerminal < 0 {
		allowedTerminal = 0
	}

	kept := entries[:0]
	terminal := 0
	for _, e := range entries {
		if e.Status.Terminal() {
			if terminal >= allowedTerminal {
				continue
			}
			terminal++
		}
		kept = append(kept, e)
	}
	return kept
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (model.QueueEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return model.QueueEntry{}, false
}

// ActiveByVoter returns the non-terminal entry for the given voter, if any.
func (s *Store) ActiveByVoter(nim string) (model.QueueEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.NIM == nim && !e.Status.Terminal() {
			return e, true
		}
	}
	return model.QueueEntry{}, false
}

// List returns a copy of the queue, newest first.
func (s *Store) List() []model.QueueEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.QueueEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the total number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Transition moves the entry with the given id into newStatus.
//
// A request that re-states the terminal state the entry is already in is
// reported as a warning no-op (warned=true, nil error) rather than a
// failure. Any other transition out of a terminal state fails with
// ErrTerminal, and transitions outside the table fail with
// ErrInvalidTransition. Entering VOTED stamps the vote time.
func (s *Store) Transition(id string, newStatus model.Status, now time.Time) (model.QueueEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.ID != id {
			continue
		}
		if e.Status.Terminal() {
			if e.Status == newStatus {
				return e, true, nil
			}
			return model.QueueEntry{}, false, ErrTerminal
		}
		if !ValidTransition(newStatus, e.Status) {
			return model.QueueEntry{}, false, ErrInvalidTransition
		}

		e.Status = newStatus
		if newStatus == model.StatusVoted {
			votedAt := now
			e.VotedAt = &votedAt
		}
		s.entries[i] = e
		return e, false, nil
	}
	return model.QueueEntry{}, false, ErrNotFound
}

// Remove deletes the entry with the given id. Removed entries are not
// recoverable.
func (s *Store) Remove(id string) (model.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return e, nil
		}
	}
	return model.QueueEntry{}, ErrNotFound
}

// Replace swaps the whole collection for the given snapshot, applying the
// capacity policy to the incoming set. This is the reconciliation path:
// any local-only entry not present in the snapshot is superseded.
func (s *Store) Replace(entries []model.QueueEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.QueueEntry, len(entries))
	copy(next, entries)
	s.entries = capEntries(next, s.capacity)
}
