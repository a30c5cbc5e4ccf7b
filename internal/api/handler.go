package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"github.com/noah-isme/pemira/internal/panel"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	panel     *panel.Panel
	db        *gorm.DB
	webpush   *webpush.Options
	stationID string
}

// NewHandler creates a new API handler.
func NewHandler(p *panel.Panel, db *gorm.DB, webpushOptions *webpush.Options, stationID string) *Handler {
	return &Handler{
		panel:     p,
		db:        db,
		webpush:   webpushOptions,
		stationID: stationID,
	}
}
