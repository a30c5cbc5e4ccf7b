package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"github.com/noah-isme/pemira/internal/model"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real implementation of Sender using the webpush
// library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Event is one station occurrence worth pushing to subscribed operators.
type Event struct {
	Kind       model.HistoryKind
	VoterLabel string
}

// WorkerPool fans station events out to every subscribed operator device.
// Delivery is best effort: a full queue drops the event rather than
// blocking a panel mutation.
type WorkerPool struct {
	size      int
	stationID string
	jobs      chan Event
	db        *gorm.DB
	webpush   *webpush.Options
	sender    Sender
}

// NewWorkerPool creates a new worker pool for one station.
func NewWorkerPool(size int, stationID string, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:      size,
		stationID: stationID,
		jobs:      make(chan Event, size*4),
		db:        db,
		webpush:   webpushOptions,
		sender:    &WebPushSender{},
	}
}

// SetSender swaps the push sender; used by tests.
func (wp *WorkerPool) SetSender(s Sender) {
	wp.sender = s
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Push worker %d started", id)
	for {
		select {
		case event := <-wp.jobs:
			wp.sendForEvent(ctx, event)
		case <-ctx.Done():
			log.Printf("Push worker %d shutting down", id)
			return
		}
	}
}

// Publish queues an event for delivery, dropping it when the pool is
// saturated.
func (wp *WorkerPool) Publish(kind model.HistoryKind, voterLabel string) {
	message := eventMessage(kind, voterLabel)
	if message == "" {
		return
	}
	select {
	case wp.jobs <- Event{Kind: kind, VoterLabel: voterLabel}:
	default:
		log.Printf("Push queue full, dropping %s event", kind)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Event {
	return wp.jobs
}

// eventMessage maps an event onto the operator-facing push text. Kinds
// without a mapping are not pushed.
func eventMessage(kind model.HistoryKind, voterLabel string) string {
	switch kind {
	case model.HistoryCheckin:
		return fmt.Sprintf("%s berhasil check-in", voterLabel)
	case model.HistoryVote:
		return fmt.Sprintf("%s telah menyelesaikan voting", voterLabel)
	case model.HistoryRejection:
		return fmt.Sprintf("Check-in %s ditolak", voterLabel)
	}
	return ""
}

func (wp *WorkerPool) sendForEvent(ctx context.Context, event Event) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Where("station_id = ?", wp.stationID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for station %s: %v", wp.stationID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	message := eventMessage(event.Kind, event.VoterLabel)
	log.Printf("Sending %d push notifications for %s event", len(subscriptions), event.Kind)
	for _, sub := range subscriptions {
		wp.send(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending push to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
