package model

import "time"

// HistoryKind classifies a persisted history record.
type HistoryKind string

const (
	HistoryOpen         HistoryKind = "open"
	HistoryClose        HistoryKind = "close"
	HistoryCheckin      HistoryKind = "checkin"
	HistoryVerification HistoryKind = "verification"
	HistoryVote         HistoryKind = "vote"
	HistoryRejection    HistoryKind = "rejection"
	HistoryToken        HistoryKind = "token"
	HistorySync         HistoryKind = "sync"
)

// HistoryRecord is an append-only record of a station event. Rows are
// never updated; the oldest ones are trimmed once the retention bound is
// exceeded.
type HistoryRecord struct {
	ID        int64       `gorm:"autoIncrement;primaryKey" json:"id"`
	StationID string      `gorm:"index;size:64;not null" json:"stationId"`
	Kind      HistoryKind `gorm:"size:32;not null" json:"kind"`
	VoterNIM  string      `gorm:"size:32" json:"nim,omitempty"`
	VoterName string      `gorm:"size:256" json:"nama,omitempty"`
	Detail    string      `gorm:"size:512;not null" json:"detail"`
	CreatedAt time.Time   `gorm:"not null;index" json:"timestamp"`
}
