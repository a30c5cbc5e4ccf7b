package model

import "time"

// StationStatus is the operating state of a polling station.
type StationStatus string

const (
	StationOpen   StationStatus = "OPEN"
	StationClosed StationStatus = "CLOSED"
)

// Station is the local projection of one polling station's identity and
// operating state. It is owned by the panel instance and replaced, never
// merged, on reconciliation.
type Station struct {
	ID             string        `json:"id"`
	Code           string        `json:"code"`
	Name           string        `json:"name"`
	Location       string        `json:"location"`
	Status         StationStatus `json:"status"`
	OpensAt        string        `json:"opensAt,omitempty"`
	ClosesAt       string        `json:"closesAt,omitempty"`
	TotalVoters    int           `json:"totalVoters"`
	TotalCheckedIn int           `json:"totalCheckedIn"`
	TotalVoted     int           `json:"totalVoted"`
	LastActivityAt *time.Time    `json:"lastActivityAt,omitempty"`
}
