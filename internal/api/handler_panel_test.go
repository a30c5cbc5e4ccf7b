package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	r.PUT("/api/subscriptions", handler.PutSubscription)
	r.GET("/api/vapid_public_key", handler.GetVAPIDPublicKey)
	r.POST("/api/panel/checkin/scan", handler.ScanCheckin)
	return r
}

func TestPutSubscription_InvalidBody(t *testing.T) {
	router := setupHandlerRouter(NewHandler(nil, nil, nil, "7"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/subscriptions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScanCheckin_MissingToken(t *testing.T) {
	router := setupHandlerRouter(NewHandler(nil, nil, nil, "7"))

	body, _ := json.Marshal(map[string]string{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/panel/checkin/scan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		router := setupHandlerRouter(NewHandler(nil, nil, nil, "7"))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/vapid_public_key", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("configured", func(t *testing.T) {
		handler := NewHandler(nil, nil, &webpush.Options{VAPIDPublicKey: "test-key"}, "7")
		router := setupHandlerRouter(handler)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/vapid_public_key", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"public_key":"test-key"}`, w.Body.String())
	})
}
