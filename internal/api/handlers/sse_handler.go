package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/elastic-opd/internal/domain/providers"
)

// SSEHandler streams queue change events to waiting-room displays and
// patient apps over Server-Sent Events.
type SSEHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		heartbeat: 30 * time.Second,
	}
}

// StreamQueueUpdates handles SSE connections for one doctor's queue
// GET /api/stream/doctors/{id}/queue
func (h *SSEHandler) StreamQueueUpdates(w http.ResponseWriter, r *http.Request) {
	doctorID := r.PathValue("id")
	if doctorID == "" {
		respondWithError(w, http.StatusBadRequest, "doctor id is required")
		return
	}

	h.stream(w, r, providers.GetQueueChannel(doctorID), map[string]interface{}{
		"doctor_id": doctorID,
		"timestamp": time.Now(),
	})
}

// StreamAllUpdates handles SSE connections for every queue in the clinic
// GET /api/stream/queues
func (h *SSEHandler) StreamAllUpdates(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, providers.EventChannelQueueUpdates, map[string]interface{}{
		"timestamp": time.Now(),
	})
}

func (h *SSEHandler) stream(w http.ResponseWriter, r *http.Request, channel string, hello map[string]interface{}) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("failed to subscribe to queue events")
		respondWithError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}

	sendEvent(w, "connected", hello)
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now()})
			flusher.Flush()
		case event, open := <-eventChan:
			if !open {
				return
			}
			if event == nil {
				continue
			}
			sendEvent(w, string(event.Type), event)
			flusher.Flush()
		}
	}
}

// sendEvent writes one SSE frame
func sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("failed to marshal SSE event")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}
