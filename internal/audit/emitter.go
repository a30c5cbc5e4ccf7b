// Package audit is the panel's side-effect channel: the in-memory
// activity feed, the persisted history ledger and the single-slot
// operator notification. Nothing here influences queue correctness;
// failures are logged and swallowed.
package audit

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/noah-isme/pemira/internal/model"
)

// Publisher receives history events for best-effort push delivery.
type Publisher interface {
	Publish(kind model.HistoryKind, voterLabel string)
}

// Emitter produces the observable side effects of every mutating panel
// operation.
type Emitter struct {
	mu               sync.Mutex
	stationID        string
	logs             []model.ActivityLog
	logRetention     int
	historyRetention int
	notif            *model.Notification
	notifTTL         time.Duration

	db        *gorm.DB
	publisher Publisher
	now       func() time.Time
}

// NewEmitter creates an emitter for one station. publisher may be nil
// when push delivery is disabled.
func NewEmitter(db *gorm.DB, stationID string, logRetention, historyRetention int, notifTTL time.Duration, publisher Publisher) *Emitter {
	return &Emitter{
		stationID:        stationID,
		logRetention:     logRetention,
		historyRetention: historyRetention,
		notifTTL:         notifTTL,
		db:               db,
		publisher:        publisher,
		now:              time.Now,
	}
}

// Log appends one line to the activity feed, newest first, dropping the
// oldest lines beyond the retention bound.
func (e *Emitter) Log(message string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry := model.ActivityLog{
		ID:        uuid.NewString(),
		Timestamp: e.now(),
		Message:   message,
	}
	e.logs = append([]model.ActivityLog{entry}, e.logs...)
	if len(e.logs) > e.logRetention {
		e.logs = e.logs[:e.logRetention]
	}
}

// Logs returns a copy of the activity feed, newest first.
func (e *Emitter) Logs() []model.ActivityLog {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]model.ActivityLog, len(e.logs))
	copy(out, e.logs)
	return out
}

// History appends a record to the persisted ledger, trims the ledger to
// its retention bound and hands the event to the push publisher.
func (e *Emitter) History(ctx context.Context, kind model.HistoryKind, nim, name, detail string) {
	record := model.HistoryRecord{
		StationID: e.stationID,
		Kind:      kind,
		VoterNIM:  nim,
		VoterName: name,
		Detail:    detail,
		CreatedAt: e.now(),
	}

	if e.db != nil {
		if err := e.db.WithContext(ctx).Create(&record).Error; err != nil {
			log.Printf("Error persisting history record (%s): %v", kind, err)
		} else {
			e.trimHistory(ctx)
		}
	}

	if e.publisher != nil {
		e.publisher.Publish(kind, name)
	}
}

func (e *Emitter) trimHistory(ctx context.Context) {
	keep := e.db.WithContext(ctx).
		Model(&model.HistoryRecord{}).
		Select("id").
		Where("station_id = ?", e.stationID).
		Order("id DESC").
		Limit(e.historyRetention)

	err := e.db.WithContext(ctx).
		Where("station_id = ? AND id NOT IN (?)", e.stationID, keep).
		Delete(&model.HistoryRecord{}).Error
	if err != nil {
		log.Printf("Error trimming history records: %v", err)
	}
}

// HistoryList returns the most recent persisted records, newest first.
func (e *Emitter) HistoryList(ctx context.Context, limit int) ([]model.HistoryRecord, error) {
	if e.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > e.historyRetention {
		limit = e.historyRetention
	}

	var records []model.HistoryRecord
	err := e.db.WithContext(ctx).
		Where("station_id = ?", e.stationID).
		Order("id DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// Notify replaces the notification slot. Consecutive failures do not
// stack; the newest message always wins.
func (e *Emitter) Notify(level model.NotificationLevel, title, message, entryID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.notif = &model.Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Title:     title,
		Message:   message,
		EntryID:   entryID,
		CreatedAt: e.now(),
	}
}

// Latest returns the current notification, or nil once it has expired or
// been dismissed.
func (e *Emitter) Latest() *model.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.notif == nil {
		return nil
	}
	if e.now().Sub(e.notif.CreatedAt) >= e.notifTTL {
		e.notif = nil
		return nil
	}
	copied := *e.notif
	return &copied
}

// Dismiss clears the notification slot early.
func (e *Emitter) Dismiss() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notif = nil
}
