// Package backend is the HTTP client for the election backend: the
// authoritative ledger of stations, voters and check-ins. The panel never
// writes queue state anywhere else; everything here is consulted, not
// owned.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/noah-isme/pemira/config"
	"github.com/noah-isme/pemira/internal/model"
)

// Client talks to the election backend for one station.
type Client struct {
	baseURL   string
	stationID string
	headers   map[string]string
	client    *http.Client
}

// NewClient creates a backend client from the configuration.
func NewClient(cfg *config.BackendConfig, stationID string) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		stationID: stationID,
		headers:   cfg.Headers,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Summary fetches the authoritative station summary.
func (c *Client) Summary(ctx context.Context) (model.Station, error) {
	var resp summaryResponse
	path := fmt.Sprintf("/stations/%s/summary", c.stationID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return model.Station{}, err
	}

	station := model.Station{
		ID:             c.stationID,
		Code:           resp.Station.Code,
		Name:           resp.Station.Name,
		Location:       resp.Station.Location,
		Status:         mapStationStatus(resp.Status),
		OpensAt:        resp.OpensAt,
		ClosesAt:       resp.ClosesAt,
		TotalVoters:    resp.Stats.TotalRegistered,
		TotalCheckedIn: resp.Stats.TotalCheckedIn,
		TotalVoted:     resp.Stats.TotalVoted,
	}
	if resp.LastActivityAt != nil {
		if at, err := time.Parse(time.RFC3339, *resp.LastActivityAt); err == nil {
			station.LastActivityAt = &at
		}
	}
	return station, nil
}

// Checkins fetches the station's queue listing. An empty status fetches
// every entry.
func (c *Client) Checkins(ctx context.Context, status string) ([]model.QueueEntry, error) {
	var resp checkinsResponse
	path := fmt.Sprintf("/stations/%s/checkins?status=%s", c.stationID, status)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}

	entries := make([]model.QueueEntry, 0, len(resp.Items))
	for _, item := range resp.Items {
		entries = append(entries, mapCheckinItem(item))
	}
	return entries, nil
}

// ScanCheckin submits a scanned admission token for validation and
// creation of a check-in.
func (c *Client) ScanCheckin(ctx context.Context, qrToken string) (model.QueueEntry, error) {
	path := fmt.Sprintf("/stations/%s/checkin/scan", c.stationID)
	return c.createCheckin(ctx, path, map[string]string{"token": qrToken})
}

// ManualCheckin submits a manually entered registration code.
func (c *Client) ManualCheckin(ctx context.Context, code string) (model.QueueEntry, error) {
	path := fmt.Sprintf("/stations/%s/checkin/manual", c.stationID)
	return c.createCheckin(ctx, path, map[string]string{"code": code})
}

func (c *Client) createCheckin(ctx context.Context, path string, body map[string]string) (model.QueueEntry, error) {
	var resp createCheckinResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return model.QueueEntry{}, err
	}

	entry := model.QueueEntry{
		ID:          strconv.FormatInt(resp.CheckinID, 10),
		NIM:         resp.Voter.NIM,
		Name:        resp.Voter.Name,
		Faculty:     resp.Voter.Faculty,
		Program:     resp.Voter.Program,
		Cohort:      resp.Voter.Cohort,
		Mode:        model.ModeStation,
		Status:      model.MapStatus(resp.Status),
		CheckedInAt: parseTime(resp.CheckinTime),
	}
	if resp.VotedTime != nil {
		if at, err := time.Parse(time.RFC3339, *resp.VotedTime); err == nil {
			entry.VotedAt = &at
		}
	}
	return entry, nil
}

// Approve marks a check-in as verified on the backend ledger.
func (c *Client) Approve(ctx context.Context, checkinID, reason string) error {
	path := fmt.Sprintf("/stations/%s/checkins/%s/approve", c.stationID, checkinID)
	return c.do(ctx, http.MethodPost, path, reasonBody(reason), nil)
}

// Reject marks a check-in as rejected on the backend ledger.
func (c *Client) Reject(ctx context.Context, checkinID, reason string) error {
	path := fmt.Sprintf("/stations/%s/checkins/%s/reject", c.stationID, checkinID)
	return c.do(ctx, http.MethodPost, path, reasonBody(reason), nil)
}

func reasonBody(reason string) map[string]string {
	if reason == "" {
		return nil
	}
	return map[string]string{"reason": reason}
}

// do performs one request and classifies every failure into an *APIError.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request payload: %w", err)
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &APIError{Code: CodeUnavailable, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Code: CodeUnavailable, Message: err.Error(), HTTPStatus: resp.StatusCode}
	}

	if resp.StatusCode >= 400 {
		return classify(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to unmarshal backend response: %w", err)
		}
	}
	return nil
}

// classify maps an error response onto the backend's error vocabulary.
func classify(status int, raw []byte) *APIError {
	var body errorResponse
	_ = json.Unmarshal(raw, &body)

	code := body.Code
	message := body.Message
	if code == "" {
		code = body.Error.Code
		message = body.Error.Message
	}

	switch {
	case status == http.StatusNotFound:
		// A missing station and a missing check-in both surface here;
		// the panel treats both as "not provisioned / not on ledger".
		return &APIError{Code: CodeNotFound, Message: message, HTTPStatus: status}
	case status >= 500:
		return &APIError{Code: CodeUnavailable, Message: message, HTTPStatus: status}
	case code == "":
		return &APIError{Code: CodeUnavailable, Message: string(raw), HTTPStatus: status}
	}
	return &APIError{Code: code, Message: message, HTTPStatus: status}
}

func mapCheckinItem(item checkinItem) model.QueueEntry {
	mode := model.VotingMode(item.Mode)
	if mode == "" {
		mode = model.ModeStation
	}
	entry := model.QueueEntry{
		ID:          strconv.FormatInt(item.CheckinID, 10),
		NIM:         item.NIM,
		Name:        item.Name,
		Faculty:     item.Faculty,
		Program:     item.Program,
		Cohort:      item.Cohort,
		Mode:        mode,
		Status:      model.MapStatus(item.Status),
		CheckedInAt: parseTime(item.CheckinTime),
	}
	if item.VotedTime != nil {
		if at, err := time.Parse(time.RFC3339, *item.VotedTime); err == nil {
			entry.VotedAt = &at
		}
	}
	return entry
}

func mapStationStatus(raw string) model.StationStatus {
	switch raw {
	case "ACTIVE", "OPEN", "Aktif":
		return model.StationOpen
	}
	return model.StationClosed
}

func parseTime(raw string) time.Time {
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return at
}
