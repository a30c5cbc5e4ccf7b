package panel

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/noah-isme/pemira/internal/backend"
	"github.com/noah-isme/pemira/internal/model"
	"github.com/noah-isme/pemira/internal/queue"
)

// TransitionOptions tune the side effects of a status transition.
type TransitionOptions struct {
	Reason string
	Notify bool
}

// Transition advances a queue entry to newStatus.
//
// A request that re-states the entry's current terminal state is a
// warning no-op. ErrNotFound and terminal/table violations are returned
// to the caller so it can decide whether to retry; they are also logged
// loudly because they indicate an integration error rather than an
// operator mistake.
func (p *Panel) Transition(ctx context.Context, entryID string, newStatus model.Status, opts TransitionOptions) (model.QueueEntry, error) {
	defer p.lock()()
	return p.transitionLocked(ctx, entryID, newStatus, opts)
}

func (p *Panel) transitionLocked(ctx context.Context, entryID string, newStatus model.Status, opts TransitionOptions) (model.QueueEntry, error) {
	if !newStatus.Valid() {
		return model.QueueEntry{}, fmt.Errorf("transition %s: unknown status %q", entryID, newStatus)
	}

	entry, warned, err := p.store.Transition(entryID, newStatus, time.Now().UTC())
	if err != nil {
		log.Printf("invariant: transition %s -> %s: %v", entryID, newStatus, err)
		return model.QueueEntry{}, fmt.Errorf("transition %s -> %s: %w", entryID, newStatus, err)
	}
	if warned {
		p.emitter.Log(fmt.Sprintf("%s sudah berstatus %s", entry.Name, entry.Status))
		return entry, nil
	}

	detail := opts.Reason
	var message string
	var kind model.HistoryKind
	switch newStatus {
	case model.StatusVoted:
		message = entry.Name + " telah menyelesaikan voting"
		kind = model.HistoryVote
		if detail == "" {
			detail = "Voting selesai"
		}
	case model.StatusRejected, model.StatusCancelled:
		message = entry.Name + " status diperbarui"
		kind = model.HistoryRejection
		if detail == "" {
			detail = "Check-in ditolak"
		}
	default:
		message = entry.Name + " status diperbarui"
		kind = model.HistoryVerification
		if detail == "" {
			detail = "Status diperbarui"
		}
	}

	p.emitter.Log(message)
	p.emitter.History(ctx, kind, entry.NIM, entry.Name, detail)

	if opts.Notify {
		level := model.NotifyInfo
		title := "Status Diperbarui"
		if newStatus == model.StatusVoted {
			level = model.NotifySuccess
			title = "Voting Selesai"
		}
		p.emitter.Notify(level, title, message, entry.ID)
	}

	return entry, nil
}

// Approve records the verification on the backend ledger first, then
// mirrors it locally.
func (p *Panel) Approve(ctx context.Context, entryID, reason string) (model.QueueEntry, error) {
	defer p.lock()()

	if err := p.backend.Approve(ctx, entryID, reason); err != nil {
		return model.QueueEntry{}, p.ledgerFailed("verifikasi", err)
	}
	return p.transitionLocked(ctx, entryID, model.StatusVerified, TransitionOptions{Reason: reason, Notify: true})
}

// Reject records the rejection on the backend ledger first, then mirrors
// it locally.
func (p *Panel) Reject(ctx context.Context, entryID, reason string) (model.QueueEntry, error) {
	defer p.lock()()

	if reason == "" {
		reason = "Data tidak sesuai"
	}
	if err := p.backend.Reject(ctx, entryID, reason); err != nil {
		return model.QueueEntry{}, p.ledgerFailed("penolakan", err)
	}
	return p.transitionLocked(ctx, entryID, model.StatusRejected, TransitionOptions{Reason: reason, Notify: true})
}

func (p *Panel) ledgerFailed(action string, err error) error {
	code := backend.ErrorCode(err)
	message := operatorMessage(code)
	p.emitter.Notify(model.NotifyWarning, "Gagal menyimpan "+action, message, "")
	return &AdmitError{Code: code, Message: message}
}

// Remove deletes a queue entry. Operator only; the removal is not
// recoverable and is always audited.
func (p *Panel) Remove(ctx context.Context, entryID string) error {
	defer p.lock()()

	entry, err := p.store.Remove(entryID)
	if err != nil {
		if err == queue.ErrNotFound {
			return fmt.Errorf("remove %s: %w", entryID, err)
		}
		return err
	}

	p.emitter.Log(entry.Name + " dihapus dari antrean")
	p.emitter.History(ctx, model.HistoryRejection, entry.NIM, entry.Name, "Dihapus dari antrean")
	p.emitter.Notify(model.NotifyWarning, "Antrean dihapus", "Pemilih dihapus dari antrean oleh panitia.", entryID)

	return nil
}
