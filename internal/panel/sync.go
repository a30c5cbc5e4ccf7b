package panel

import (
	"context"
	"fmt"

	"github.com/noah-isme/pemira/internal/backend"
	"github.com/noah-isme/pemira/internal/model"
)

// Sync pulls the authoritative station summary and queue listing and
// replaces the local projections with them. It is a full replace, not a
// merge: a local optimistic entry the backend never acknowledged does not
// survive. Because Sync takes the panel mutex it is always ordered after
// any in-flight admission.
//
// A NotFound backend answer means the station is not provisioned: the
// local queue is cleared and a distinguishable warning is raised. Any
// other failure leaves local state untouched and raises a retryable
// notification.
func (p *Panel) Sync(ctx context.Context) error {
	defer p.lock()()

	station, err := p.backend.Summary(ctx)
	if err != nil {
		return p.syncFailed(err)
	}

	entries, err := p.backend.Checkins(ctx, "")
	if err != nil {
		return p.syncFailed(err)
	}

	station.ID = p.station.ID
	if station.Code == "" {
		station.Code = p.station.Code
	}
	p.station = station
	p.store.Replace(entries)

	p.emitter.Log("Queue disinkron dari backend")
	p.emitter.History(ctx, model.HistorySync, "", "", fmt.Sprintf("Sinkronisasi queue (%d entri)", len(entries)))

	return nil
}

func (p *Panel) syncFailed(err error) error {
	if backend.IsNotFound(err) {
		p.store.Replace(nil)
		p.emitter.Log("TPS tidak ditemukan di backend, antrean dikosongkan")
		p.emitter.Notify(model.NotifyWarning, "TPS tidak ditemukan",
			"TPS belum diprovisikan di server atau ID TPS tidak valid.", "")
		return nil
	}

	p.emitter.Notify(model.NotifyWarning, "Gagal sinkron data TPS",
		"Server tidak dapat dihubungi. Sinkronisasi akan dicoba lagi.", "")
	return fmt.Errorf("sync station %s: %w", p.station.ID, err)
}
