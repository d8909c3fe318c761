package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/careroute/backend/internal/domain/entities"
	"github.com/zatekoja/careroute/backend/internal/domain/providers"
)

const heartbeatInterval = 30 * time.Second

// EventStreamHandler relays triage events to browsers over Server-Sent
// Events. It holds one upstream subscription and fans out to clients.
type EventStreamHandler struct {
	subscriber providers.TriageEventSubscriber
	clients    map[chan *entities.TriageEvent]struct{}
	mu         sync.RWMutex
	heartbeat  time.Duration
}

// NewEventStreamHandler creates a handler; call Start before serving
func NewEventStreamHandler(subscriber providers.TriageEventSubscriber) *EventStreamHandler {
	return &EventStreamHandler{
		subscriber: subscriber,
		clients:    make(map[chan *entities.TriageEvent]struct{}),
		heartbeat:  heartbeatInterval,
	}
}

// Start subscribes upstream and forwards events until ctx is done
func (h *EventStreamHandler) Start(ctx context.Context) error {
	events, err := h.subscriber.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to triage events: %w", err)
	}
	go func() {
		for event := range events {
			h.broadcast(event)
		}
		log.Info().Msg("triage event stream stopped")
	}()
	return nil
}

func (h *EventStreamHandler) broadcast(event *entities.TriageEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client <- event:
		default:
			// slow client, drop
		}
	}
}

func (h *EventStreamHandler) register() chan *entities.TriageEvent {
	client := make(chan *entities.TriageEvent, 20)
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	return client
}

func (h *EventStreamHandler) unregister(client chan *entities.TriageEvent) {
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
}

// Stream handles GET /api/events/stream?urgency=HIGH
func (h *EventStreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.subscriber == nil {
		respondWithError(w, http.StatusServiceUnavailable, "event stream is not enabled")
		return
	}

	var only entities.UrgencyLevel
	if raw := r.URL.Query().Get("urgency"); raw != "" {
		parsed, ok := entities.ParseUrgency(raw)
		if !ok {
			respondWithError(w, http.StatusBadRequest, "urgency must be HIGH, MEDIUM, or LOW")
			return
		}
		only = parsed
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := h.register()
	defer h.unregister(client)

	h.sendEvent(w, "connected", map[string]interface{}{"timestamp": time.Now().UTC()})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now().UTC()})
			flusher.Flush()
		case event := <-client:
			if only != "" && event.Urgency != only {
				continue
			}
			h.sendEvent(w, "triage", event)
			flusher.Flush()
		}
	}
}

func (h *EventStreamHandler) sendEvent(w http.ResponseWriter, name string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Warn().Err(err).Str("event", name).Msg("failed to marshal SSE event")
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
}
