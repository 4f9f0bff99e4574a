package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/attribution"
	"github.com/freestuffdude5-ops/fitbites-backend-sub000/internal/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Secrets holds per-partner webhook signing keys. Partner-specific keys
// fall back to the shared secret when unset.
type Secrets struct {
	Shared []byte
	Impact []byte
	Amazon []byte
}

func (s Secrets) impact() []byte {
	if len(s.Impact) > 0 {
		return s.Impact
	}
	return s.Shared
}

func (s Secrets) amazon() []byte {
	if len(s.Amazon) > 0 {
		return s.Amazon
	}
	return s.Shared
}

// Handler receives partner conversion postbacks and feeds the attribution
// engine.
type Handler struct {
	engine  *attribution.Engine
	secrets Secrets
	timeout time.Duration
}

func NewHandler(engine *attribution.Engine, secrets Secrets, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handler{engine: engine, secrets: secrets, timeout: timeout}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/amazon", h.HandleAmazon)
	r.Post("/impact", h.HandleImpact)
	r.Post("/generic", h.HandleGeneric)
	return r
}

func (h *Handler) HandleAmazon(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readVerified(w, r, h.secrets.amazon(), "X-FitBites-Signature")
	if !ok {
		return
	}
	var p amazonPayload
	if err := json.Unmarshal(body, &p); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	conv, convErr := p.toConversion()
	h.record(w, r, conv, convErr)
}

func (h *Handler) HandleImpact(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readVerified(w, r, h.secrets.impact(), "X-Impact-Signature")
	if !ok {
		return
	}
	var p impactPayload
	if err := json.Unmarshal(body, &p); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	conv, convErr := p.toConversion()
	h.record(w, r, conv, convErr)
}

func (h *Handler) HandleGeneric(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readVerified(w, r, h.secrets.Shared, "X-FitBites-Signature")
	if !ok {
		return
	}
	var p genericPayload
	if err := json.Unmarshal(body, &p); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	conv, convErr := p.toConversion()
	h.record(w, r, conv, convErr)
}

// readVerified reads the body and checks its HMAC before any parsing. A bad
// or missing signature never reveals whether the payload would have parsed.
func (h *Handler) readVerified(w http.ResponseWriter, r *http.Request, secret []byte, header string) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return nil, false
	}
	if !VerifySignature(secret, body, r.Header.Get(header)) {
		logger.Warn("webhook signature rejected", "path", r.URL.Path)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return nil, false
	}
	return body, true
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request, conv attribution.Conversion, convErr error) {
	if convErr != nil {
		http.Error(w, convErr.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	evt, created, err := h.engine.Record(ctx, conv)
	if err != nil {
		logger.Error("record conversion", "order_id", conv.OrderID, "error", err.Error())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	status := "recorded"
	if !created {
		// Partners retry; replays ack with 200 so they stop.
		status = "duplicate"
	}
	logger.Info("webhook conversion", "order_id", evt.OrderID, "provider", evt.Provider,
		"status", status, "attributed", evt.IsAttributed)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":     status,
		"order_id":   evt.OrderID,
		"attributed": evt.IsAttributed,
	})
}
