package model

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a queue entry. The set is closed:
// every value the backend reports is normalized onto it via MapStatus.
type Status string

const (
	StatusCheckedIn Status = "CHECKED_IN"
	StatusVerified  Status = "VERIFIED"
	StatusVoted     Status = "VOTED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

// Terminal reports whether no further transition is permitted out of s.
func (s Status) Terminal() bool {
	switch s {
	case StatusVoted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Valid reports whether s is one of the canonical status values.
func (s Status) Valid() bool {
	switch s {
	case StatusCheckedIn, StatusVerified, StatusVoted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// MapStatus normalizes the status vocabularies used by the backend
// ("waiting"/"PENDING" on one code path, "verified"/"rejected" on
// another) onto the canonical set. Unknown values map to CHECKED_IN so a
// live entry is never dropped over a vocabulary drift.
func MapStatus(raw string) Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "VOTED":
		return StatusVoted
	case "VERIFIED":
		return StatusVerified
	case "REJECTED":
		return StatusRejected
	case "CANCELLED":
		return StatusCancelled
	case "CHECKED_IN", "PENDING", "WAITING", "":
		return StatusCheckedIn
	}
	return StatusCheckedIn
}

// VotingMode tags where the admitted voter will cast their ballot.
type VotingMode string

const (
	ModeDevice  VotingMode = "mobile"
	ModeStation VotingMode = "tps"
)

// QueueEntry is one admitted voter's progress record at the station.
// Entries are created by a successful admission, mutated only through
// the status transition path, and become immutable once terminal.
type QueueEntry struct {
	ID          string     `json:"id"`
	NIM         string     `json:"nim"`
	Name        string     `json:"name"`
	Faculty     string     `json:"faculty"`
	Program     string     `json:"program"`
	Cohort      string     `json:"cohort"`
	Mode        VotingMode `json:"mode"`
	Status      Status     `json:"status"`
	Token       string     `json:"token,omitempty"`
	CheckedInAt time.Time  `json:"checkedInAt"`
	VotedAt     *time.Time `json:"votedAt,omitempty"`
}
