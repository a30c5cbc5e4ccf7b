package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pemira/config"
	"github.com/noah-isme/pemira/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.BackendConfig{
		BaseURL: server.URL,
		Headers: map[string]string{"Authorization": "Bearer test"},
		Timeout: 2 * time.Second,
	}
	return NewClient(cfg, "7")
}

func TestClient_Summary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stations/7/summary", r.URL.Path)
		assert.Equal(t, "Bearer test", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"station": map[string]any{"code": "TPS-07", "name": "TPS Fakultas Teknik", "location": "Gedung A"},
			"status":  "ACTIVE",
			"stats": map[string]any{
				"total_registered_tps_voters": 350,
				"total_checked_in":            12,
				"total_voted":                 9,
			},
		})
	})

	station, err := client.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TPS-07", station.Code)
	assert.Equal(t, model.StationOpen, station.Status)
	assert.Equal(t, 350, station.TotalVoters)
	assert.Equal(t, 12, station.TotalCheckedIn)
	assert.Equal(t, 9, station.TotalVoted)
}

func TestClient_Checkins_MapsStatusVocabulary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stations/7/checkins", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"items": []map[string]any{
				{"checkin_id": 1, "nim": "2110510023", "name": "Roni", "status": "waiting", "checkin_time": "2026-08-29T08:00:00Z"},
				{"checkin_id": 2, "nim": "2110510024", "name": "Sari", "status": "PENDING", "checkin_time": "2026-08-29T08:05:00Z"},
				{"checkin_id": 3, "nim": "2110510025", "name": "Budi", "status": "VOTED", "checkin_time": "2026-08-29T08:10:00Z", "voted_time": "2026-08-29T08:20:00Z"},
				{"checkin_id": 4, "nim": "2110510026", "name": "Dewi", "status": "rejected", "checkin_time": "2026-08-29T08:15:00Z"},
			},
		})
	})

	entries, err := client.Checkins(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, entries, 4)

	assert.Equal(t, model.StatusCheckedIn, entries[0].Status)
	assert.Equal(t, model.StatusCheckedIn, entries[1].Status)
	assert.Equal(t, model.StatusVoted, entries[2].Status)
	require.NotNil(t, entries[2].VotedAt)
	assert.Equal(t, model.StatusRejected, entries[3].Status)
}

func TestClient_ScanCheckin_ErrorClassification(t *testing.T) {
	testCases := []struct {
		name       string
		status     int
		body       any
		wantCode   string
		retryable  bool
	}{
		{
			name:     "flat error code",
			status:   http.StatusUnprocessableEntity,
			body:     map[string]string{"code": "ALREADY_VOTED", "message": "voter already voted"},
			wantCode: CodeAlreadyVoted,
		},
		{
			name:     "nested error code",
			status:   http.StatusConflict,
			body:     map[string]any{"error": map[string]string{"code": "CHECKIN_EXISTS"}},
			wantCode: CodeCheckinExists,
		},
		{
			name:     "invalid token",
			status:   http.StatusUnauthorized,
			body:     map[string]string{"code": "INVALID_TOKEN"},
			wantCode: CodeInvalidToken,
		},
		{
			name:     "station not found",
			status:   http.StatusNotFound,
			body:     map[string]string{"message": "no such station"},
			wantCode: CodeNotFound,
		},
		{
			name:      "server failure",
			status:    http.StatusInternalServerError,
			body:      map[string]string{"message": "boom"},
			wantCode:  CodeUnavailable,
			retryable: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				json.NewEncoder(w).Encode(tc.body)
			})

			_, err := client.ScanCheckin(context.Background(), "tps_7_deadbeef")
			require.Error(t, err)
			assert.Equal(t, tc.wantCode, ErrorCode(err))

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.retryable, apiErr.Retryable())
		})
	}
}

func TestClient_ScanCheckin_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stations/7/checkin/scan", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tps_7_deadbeef", body["token"])

		json.NewEncoder(w).Encode(map[string]any{
			"checkin_id":   42,
			"status":       "CHECKED_IN",
			"checkin_time": "2026-08-29T08:00:00Z",
			"voter": map[string]string{
				"nim": "2110510023", "name": "Roni Saputra",
				"faculty": "Teknik", "program": "Informatika",
			},
		})
	})

	entry, err := client.ScanCheckin(context.Background(), "tps_7_deadbeef")
	require.NoError(t, err)
	assert.Equal(t, "42", entry.ID)
	assert.Equal(t, "2110510023", entry.NIM)
	assert.Equal(t, model.StatusCheckedIn, entry.Status)
	assert.False(t, entry.CheckedInAt.IsZero())
}

func TestClient_UnreachableBackend(t *testing.T) {
	cfg := &config.BackendConfig{
		BaseURL: "http://127.0.0.1:1", // nothing listens here
		Timeout: 500 * time.Millisecond,
	}
	client := NewClient(cfg, "7")

	_, err := client.Summary(context.Background())
	require.Error(t, err)
	assert.Equal(t, CodeUnavailable, ErrorCode(err))
	assert.False(t, IsNotFound(err))
}
