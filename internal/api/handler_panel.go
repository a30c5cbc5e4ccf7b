package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pemira/internal/model"
	"github.com/noah-isme/pemira/internal/panel"
	"github.com/noah-isme/pemira/internal/queue"
	"github.com/noah-isme/pemira/internal/token"
)

// GetPanel returns the station projection together with the current
// token summary.
func (h *Handler) GetPanel(c *gin.Context) {
	value, ttl := h.panel.Token()
	c.JSON(http.StatusOK, gin.H{
		"station":        h.panel.StationInfo(),
		"token":          value,
		"tokenExpiresIn": int(ttl.Seconds()),
	})
}

// GetQueue returns the live queue, newest first.
func (h *Handler) GetQueue(c *gin.Context) {
	entries := h.panel.Queue()
	c.JSON(http.StatusOK, gin.H{"items": entries, "total": len(entries)})
}

// GetToken returns the current admission token and its remaining TTL.
func (h *Handler) GetToken(c *gin.Context) {
	value, ttl := h.panel.Token()
	c.JSON(http.StatusOK, gin.H{"token": value, "expiresIn": int(ttl.Seconds())})
}

// GetLogs returns the in-memory activity feed.
func (h *Handler) GetLogs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.panel.Audit().Logs()})
}

// GetHistory returns the persisted history records.
func (h *Handler) GetHistory(c *gin.Context) {
	records, err := h.panel.Audit().HistoryList(c.Request.Context(), 0)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": records})
}

// GetNotification returns the current notification, if any.
func (h *Handler) GetNotification(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notification": h.panel.Audit().Latest()})
}

// DismissNotification clears the notification slot.
func (h *Handler) DismissNotification(c *gin.Context) {
	h.panel.Audit().Dismiss()
	c.Status(http.StatusNoContent)
}

type scanCheckinRequest struct {
	Token string `json:"token" binding:"required"`
}

// ScanCheckin admits a voter from a scanned admission token.
func (h *Handler) ScanCheckin(c *gin.Context) {
	var req scanCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.admit(c, panel.AdmitRequest{QRToken: req.Token})
}

type manualCheckinRequest struct {
	Code string `json:"code" binding:"required"`
}

// ManualCheckin admits a voter from a manually entered registration code.
func (h *Handler) ManualCheckin(c *gin.Context) {
	var req manualCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.admit(c, panel.AdmitRequest{ManualCode: req.Code})
}

func (h *Handler) admit(c *gin.Context, req panel.AdmitRequest) {
	entry, err := h.panel.Admit(c.Request.Context(), req)
	if err != nil {
		var admitErr *panel.AdmitError
		if errors.As(err, &admitErr) {
			status := http.StatusUnprocessableEntity
			if admitErr.Retryable() {
				status = http.StatusServiceUnavailable
			}
			c.JSON(status, gin.H{"code": admitErr.Code, "message": admitErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// TransitionEntry moves a queue entry to a new lifecycle status.
func (h *Handler) TransitionEntry(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := model.Status(req.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	entry, err := h.panel.Transition(c.Request.Context(), c.Param("entry_id"), status, panel.TransitionOptions{
		Reason: req.Reason,
		Notify: true,
	})
	if err != nil {
		h.transitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// ApproveEntry verifies a check-in on the backend ledger and locally.
func (h *Handler) ApproveEntry(c *gin.Context) {
	var req reasonRequest
	_ = c.ShouldBindJSON(&req)

	entry, err := h.panel.Approve(c.Request.Context(), c.Param("entry_id"), req.Reason)
	if err != nil {
		h.transitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// RejectEntry rejects a check-in on the backend ledger and locally.
func (h *Handler) RejectEntry(c *gin.Context) {
	var req reasonRequest
	_ = c.ShouldBindJSON(&req)

	entry, err := h.panel.Reject(c.Request.Context(), c.Param("entry_id"), req.Reason)
	if err != nil {
		h.transitionError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) transitionError(c *gin.Context, err error) {
	var admitErr *panel.AdmitError
	switch {
	case errors.Is(err, queue.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
	case errors.Is(err, queue.ErrTerminal), errors.Is(err, queue.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &admitErr):
		status := http.StatusUnprocessableEntity
		if admitErr.Retryable() {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"code": admitErr.Code, "message": admitErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// RemoveEntry deletes a queue entry.
func (h *Handler) RemoveEntry(c *gin.Context) {
	if err := h.panel.Remove(c.Request.Context(), c.Param("entry_id")); err != nil {
		if errors.Is(err, queue.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// RotateToken forces a manual token rotation.
func (h *Handler) RotateToken(c *gin.Context) {
	value := h.panel.Rotate(token.TriggerManual)
	_, ttl := h.panel.Token()
	c.JSON(http.StatusOK, gin.H{"token": value, "expiresIn": int(ttl.Seconds())})
}

// PauseToken freezes the token countdown while the UI is hidden.
func (h *Handler) PauseToken(c *gin.Context) {
	h.panel.PauseToken()
	c.Status(http.StatusNoContent)
}

// ResumeToken restarts the token countdown.
func (h *Handler) ResumeToken(c *gin.Context) {
	h.panel.ResumeToken()
	c.Status(http.StatusNoContent)
}

// Sync reconciles local state against the backend on demand.
func (h *Handler) Sync(c *gin.Context) {
	if err := h.panel.Sync(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"station": h.panel.StationInfo(),
		"queue":   h.panel.Queue(),
	})
}

type setStatusRequest struct {
	Status   string `json:"status" binding:"required"`
	Operator string `json:"operator"`
}

// SetStatus opens or closes the station.
func (h *Handler) SetStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var status model.StationStatus
	switch req.Status {
	case string(model.StationOpen):
		status = model.StationOpen
	case string(model.StationClosed):
		status = model.StationClosed
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be OPEN or CLOSED"})
		return
	}

	c.JSON(http.StatusOK, h.panel.SetStatus(status, req.Operator))
}
