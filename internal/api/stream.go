package api

import (
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tickstack/tickstack-server/internal/identity"
	"github.com/tickstack/tickstack-server/internal/live"
)

// StreamHandler serves the live change stream at GET /api/v1/stream as
// server-sent events. An optional ?list_id= query narrows the stream to a
// single checklist.
type StreamHandler struct {
	hub    *live.Hub
	logger *slog.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(hub *live.Hub, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		hub:    hub,
		logger: logger,
	}
}

// ServeHTTP handles the SSE connection.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Early client disconnect.
	if r.Context().Err() != nil {
		return
	}

	owner, err := identity.FromContext{}.CurrentOwnerID(r.Context())
	if err != nil {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	rc := http.NewResponseController(w)

	if err := rc.Flush(); err != nil {
		h.logger.Error("failed to flush headers", slog.String("error", err.Error()))
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sub, err := h.hub.Subscribe(owner, r.URL.Query().Get("list_id"))
	if err != nil {
		h.logger.Error("failed to open subscription", slog.String("error", err.Error()))
		http.Error(w, "Failed to establish connection", http.StatusInternalServerError)
		return
	}
	defer h.hub.Unsubscribe(sub.ID)

	subLogger := h.logger.With(slog.String("subscription_id", sub.ID))

	if err := h.sendEvent(w, rc, "connected", map[string]string{
		"subscription_id": sub.ID,
		"message":         "stream established",
	}); err != nil {
		subLogger.Warn("failed to send initial connection message", slog.String("error", err.Error()))
		return
	}

	ctx := r.Context()

	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				subLogger.Info("subscription closed by hub")
				return
			}
			if err := h.sendEvent(w, rc, string(event.Type), event); err != nil {
				// Client disconnect is normal, not an error condition.
				subLogger.Info("client disconnected during send")
				return
			}

		case <-sub.Done:
			// Hub closed this subscription (server shutdown).
			subLogger.Info("subscription closed by hub")
			return

		case <-ctx.Done():
			// Client disconnected.
			subLogger.Info("client context canceled")
			return
		}
	}
}

// sendEvent writes an SSE event to the response writer using json/v2.
func (h *StreamHandler) sendEvent(w http.ResponseWriter, rc *http.ResponseController, eventType string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	// Write SSE format:
	// event: <type>
	// data: <json>
	// (blank line)

	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", jsonData); err != nil {
		return err
	}

	if err := rc.Flush(); err != nil {
		return err
	}

	// Reset the write deadline after each successful write so hung
	// connections eventually error out.
	if err := rc.SetWriteDeadline(time.Now().Add(60 * time.Second)); err != nil {
		h.logger.Debug("failed to set write deadline", slog.String("error", err.Error()))
	}

	return nil
}
