// Package panel implements the station actor: the single owner of one
// polling station's check-in queue, admission token and station
// projection. Every mutation goes through the panel under one mutex, so
// no two operations interleave their read-modify-write cycle and a
// reconciliation pass is always ordered after any in-flight admission.
package panel

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/noah-isme/pemira/config"
	"github.com/noah-isme/pemira/internal/audit"
	"github.com/noah-isme/pemira/internal/model"
	"github.com/noah-isme/pemira/internal/queue"
	"github.com/noah-isme/pemira/internal/token"
)

// Backend is the slice of the election backend the panel consumes.
type Backend interface {
	Summary(ctx context.Context) (model.Station, error)
	Checkins(ctx context.Context, status string) ([]model.QueueEntry, error)
	ScanCheckin(ctx context.Context, qrToken string) (model.QueueEntry, error)
	ManualCheckin(ctx context.Context, code string) (model.QueueEntry, error)
	Approve(ctx context.Context, checkinID, reason string) error
	Reject(ctx context.Context, checkinID, reason string) error
}

// Panel is one station's panel instance.
type Panel struct {
	cfg     *config.Config
	station model.Station
	store   *queue.Store
	rotator *token.Rotator
	backend Backend
	emitter *audit.Emitter

	// mu serializes all mutating operations; see the package comment.
	mu sync.Mutex
}

// New wires a panel for the configured station.
func New(cfg *config.Config, backend Backend, emitter *audit.Emitter) *Panel {
	p := &Panel{
		cfg: cfg,
		station: model.Station{
			ID:     cfg.Station.ID,
			Code:   cfg.Station.Code,
			Status: model.StationClosed,
		},
		store:   queue.NewStore(cfg.Queue.Capacity),
		rotator: token.NewRotator(cfg.Station.Code, cfg.Token.Rotation),
		backend: backend,
		emitter: emitter,
	}

	p.rotator.OnRotate(func(value string, trigger token.Trigger) {
		label := "QR baru dibuat otomatis"
		message := "Token berganti otomatis untuk keamanan."
		if trigger == token.TriggerManual {
			label = "QR diperbarui manual oleh panitia"
			message = "Token baru siap dipindai oleh pemilih."
		}
		p.emitter.Log(label)
		p.emitter.History(context.Background(), model.HistoryToken, "", "", label)
		p.emitter.Notify(model.NotifyInfo, "Token QR diperbarui", message, "")
	})

	return p
}

func (p *Panel) lock() func() {
	p.mu.Lock()
	return p.mu.Unlock
}

// Run drives the panel's background work: the token rotation countdown
// and the periodic reconciliation cycle. It blocks until the context is
// cancelled.
func (p *Panel) Run(ctx context.Context) {
	go p.rotator.Run(ctx)

	if err := p.Sync(ctx); err != nil {
		log.Printf("Initial sync failed: %v", err)
	}

	timer := time.NewTimer(p.cfg.Backend.SyncInterval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Panel shutting down.")
			return
		case <-timer.C:
			if err := p.Sync(ctx); err != nil {
				log.Printf("Periodic sync failed: %v", err)
			}
			timer.Reset(p.cfg.Backend.SyncInterval)
		}
	}
}

// StationInfo returns a copy of the current station projection.
func (p *Panel) StationInfo() model.Station {
	defer p.lock()()
	return p.station
}

// Queue returns a copy of the live queue, newest first.
func (p *Panel) Queue() []model.QueueEntry {
	return p.store.List()
}

// Token returns the current admission token and its remaining TTL.
func (p *Panel) Token() (string, time.Duration) {
	return p.rotator.Current()
}

// Rotate forces a rotation of the admission token.
func (p *Panel) Rotate(trigger token.Trigger) string {
	return p.rotator.Rotate(trigger)
}

// PauseToken freezes the rotation countdown while the panel UI is hidden.
func (p *Panel) PauseToken() { p.rotator.Pause() }

// ResumeToken restarts the countdown from where it was paused.
func (p *Panel) ResumeToken() { p.rotator.Resume() }

// Audit exposes the emitter for the read-side handlers.
func (p *Panel) Audit() *audit.Emitter {
	return p.emitter
}

// SetStatus opens or closes the station locally and records the action.
func (p *Panel) SetStatus(status model.StationStatus, operator string) model.Station {
	defer p.lock()()

	p.station.Status = status

	kind := model.HistoryClose
	label := "TPS ditutup"
	if status == model.StationOpen {
		kind = model.HistoryOpen
		label = "TPS dibuka"
	}
	if operator != "" {
		p.emitter.Log(label + " oleh " + operator)
	} else {
		p.emitter.Log(label)
	}
	p.emitter.History(context.Background(), kind, "", operator, label+" ("+p.station.Name+")")

	return p.station
}
