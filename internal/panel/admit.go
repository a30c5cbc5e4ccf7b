package panel

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/pemira/internal/backend"
	"github.com/noah-isme/pemira/internal/model"
	"github.com/noah-isme/pemira/internal/queue"
)

// AdmitRequest carries one admission attempt: either a scanned admission
// token or a manually entered registration code.
type AdmitRequest struct {
	QRToken    string `json:"token,omitempty"`
	ManualCode string `json:"code,omitempty"`
}

// AdmitError is an admission failure already mapped to operator-facing
// text. It is always recoverable: the station keeps waiting for the next
// attempt and no entry is created.
type AdmitError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AdmitError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Retryable reports whether the failure is connectivity-class.
func (e *AdmitError) Retryable() bool {
	return e.Code == backend.CodeUnavailable
}

// operatorMessage maps a backend error code onto the text shown to the
// station operator.
func operatorMessage(code string) string {
	switch code {
	case backend.CodeInvalidToken:
		return "QR tidak valid untuk TPS ini."
	case backend.CodeTokenMismatch:
		return "QR tidak sesuai TPS."
	case backend.CodeNotStationVoter:
		return "Pemilih tidak dialokasikan ke TPS ini."
	case backend.CodeAlreadyVoted:
		return "Pemilih sudah memberikan suara."
	case backend.CodeCheckinExists:
		return "Pemilih sudah check-in."
	case backend.CodeNotFound:
		return "TPS tidak ditemukan di server."
	}
	return "Gagal melakukan check-in. Coba lagi."
}

// Admit validates one admission attempt and, on success, inserts the
// voter into the queue with status CHECKED_IN.
//
// Validation order: the backend resolves the payload to a voter and
// applies the voter-level rules (assignment, already-voted, manual code
// resolution); then the live queue is checked for a duplicate; finally a
// scanned token must equal the rotator's current one. Failures are
// returned as *AdmitError and produce exactly one notification.
func (p *Panel) Admit(ctx context.Context, req AdmitRequest) (model.QueueEntry, error) {
	defer p.lock()()

	if req.QRToken == "" && req.ManualCode == "" {
		return model.QueueEntry{}, p.admitFailed(&AdmitError{
			Code:    backend.CodeInvalidToken,
			Message: "QR code tidak terbaca. Coba ulangi.",
		})
	}

	var entry model.QueueEntry
	var err error
	if req.QRToken != "" {
		entry, err = p.backend.ScanCheckin(ctx, req.QRToken)
	} else {
		entry, err = p.backend.ManualCheckin(ctx, req.ManualCode)
	}
	if err != nil {
		code := backend.ErrorCode(err)
		return model.QueueEntry{}, p.admitFailed(&AdmitError{Code: code, Message: operatorMessage(code)})
	}

	if _, exists := p.store.ActiveByVoter(entry.NIM); exists {
		return model.QueueEntry{}, p.admitFailed(&AdmitError{
			Code:    backend.CodeCheckinExists,
			Message: operatorMessage(backend.CodeCheckinExists),
		})
	}

	current, _ := p.rotator.Current()
	if req.QRToken != "" && req.QRToken != current {
		return model.QueueEntry{}, p.admitFailed(&AdmitError{
			Code:    backend.CodeTokenMismatch,
			Message: operatorMessage(backend.CodeTokenMismatch),
		})
	}

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.Status = model.StatusCheckedIn
	entry.Token = current
	if entry.CheckedInAt.IsZero() {
		entry.CheckedInAt = time.Now().UTC()
	}

	if err := p.store.Insert(entry); err != nil {
		switch err {
		case queue.ErrDuplicateVoter:
			return model.QueueEntry{}, p.admitFailed(&AdmitError{
				Code:    backend.CodeCheckinExists,
				Message: operatorMessage(backend.CodeCheckinExists),
			})
		case queue.ErrActiveCapacity:
			// An integration error, not an operator mistake: the station
			// holds a full capacity of voters who have not finished.
			log.Printf("invariant: active queue capacity exceeded admitting %s", entry.NIM)
			return model.QueueEntry{}, fmt.Errorf("admit %s: %w", entry.NIM, err)
		default:
			return model.QueueEntry{}, fmt.Errorf("admit %s: %w", entry.NIM, err)
		}
	}

	p.emitter.Log(entry.Name + " berhasil check-in")
	p.emitter.History(ctx, model.HistoryCheckin, entry.NIM, entry.Name, "Check-in via QR TPS")
	p.emitter.Notify(model.NotifySuccess, "Check-in berhasil", entry.Name+" masuk antrean.", entry.ID)

	return entry, nil
}

// admitFailed records the failure and hands the mapped error back. The
// single notification slot means consecutive identical failures never
// stack.
func (p *Panel) admitFailed(admitErr *AdmitError) error {
	p.emitter.Log("Check-in gagal: " + admitErr.Message)
	p.emitter.Notify(model.NotifyWarning, "Check-in gagal", admitErr.Message, "")
	return admitErr
}
