package notification

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/noah-isme/pemira/internal/model"
)

// mockSender is a mock implementation of the Sender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestWorkerPool_Publish(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, "7", db, &webpush.Options{})

	wp.Publish(model.HistoryCheckin, "Roni Saputra")

	select {
	case event := <-wp.jobs:
		assert.Equal(t, model.HistoryCheckin, event.Kind)
		assert.Equal(t, "Roni Saputra", event.VoterLabel)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for event to be queued")
	}
}

func TestWorkerPool_UnmappedKindNotQueued(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, "7", db, &webpush.Options{})

	// Token rotations and syncs are station noise, not push material.
	wp.Publish(model.HistoryToken, "")
	wp.Publish(model.HistorySync, "")

	select {
	case event := <-wp.jobs:
		t.Fatalf("unexpected event queued: %v", event.Kind)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, "7", gormDB, &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	// --- Test Case: One subscription found, notification sent ---
	t.Run("sends notification for one subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(1)

		subscription := model.PushSubscription{
			Endpoint: "https://example.com/push",
			P256DH:   "test_p256dh",
			Auth:     "test_auth",
		}

		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.Equal(t, "https://example.com/push", sub.Endpoint)
				assert.Equal(t, "Roni Saputra telah menyelesaikan voting", string(payload))
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions" WHERE station_id = \$1`).
			WithArgs("7").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "station_id", "created_at"}).
				AddRow(subscription.Endpoint, subscription.P256DH, subscription.Auth, "7", time.Now()))

		wp.Publish(model.HistoryVote, "Roni Saputra")
		wg.Wait()
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	// --- Test Case: Subscription expired, should be deleted ---
	t.Run("deletes expired subscription", func(t *testing.T) {
		subscription := model.PushSubscription{
			Endpoint: "https://example.com/expired",
			P256DH:   "test_p256dh_expired",
			Auth:     "test_auth_expired",
		}

		// Set up the mock sender to return a 410 Gone status
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions" WHERE station_id = \$1`).
			WithArgs("7").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "station_id", "created_at"}).
				AddRow(subscription.Endpoint, subscription.P256DH, subscription.Auth, "7", time.Now()))

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "push_subscriptions" WHERE "push_subscriptions"."endpoint" = \$1`).
			WithArgs(subscription.Endpoint).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.Publish(model.HistoryRejection, "Sari")

		// A short sleep to allow the worker to process the job
		time.Sleep(100 * time.Millisecond)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	// --- Test Case: No subscriptions, nothing sent ---
	t.Run("does nothing without subscriptions", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				t.Error("sender must not be invoked without subscriptions")
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT .* FROM "push_subscriptions" WHERE station_id = \$1`).
			WithArgs("7").
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "station_id", "created_at"}))

		wp.Publish(model.HistoryCheckin, "Budi")

		time.Sleep(100 * time.Millisecond)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
