package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/careroute/backend/internal/catalog"
)

const dependencyPingTimeout = 2 * time.Second

// Pinger is implemented by every optional backend client
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency states reported by the health endpoint
const (
	DependencyUp       = "up"
	DependencyDown     = "down"
	DependencyDisabled = "disabled"
)

// HealthHandler reports catalog and dependency status. It always answers 200
// while the process is up; the body says whether the service is degraded.
type HealthHandler struct {
	symptoms     func() catalog.Status
	facilities   func() catalog.Status
	classifier   bool
	dependencies map[string]Pinger
}

// NewHealthHandler creates a health handler. A nil Pinger marks a dependency
// as disabled.
func NewHealthHandler(symptoms, facilities func() catalog.Status, classifier bool, dependencies map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		symptoms:     symptoms,
		facilities:   facilities,
		classifier:   classifier,
		dependencies: dependencies,
	}
}

type healthResponse struct {
	Status       string                    `json:"status"`
	Catalogs     map[string]catalog.Status `json:"catalogs"`
	Dependencies map[string]string         `json:"dependencies"`
	Classifier   string                    `json:"classifier"`
	Timestamp    time.Time                 `json:"timestamp"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status: "healthy",
		Catalogs: map[string]catalog.Status{
			"symptoms":   h.symptoms(),
			"facilities": h.facilities(),
		},
		Dependencies: h.pingAll(r.Context()),
		Classifier:   "disabled",
		Timestamp:    time.Now().UTC(),
	}
	if h.classifier {
		resp.Classifier = "enabled"
	}

	for _, s := range resp.Catalogs {
		if !s.Healthy() {
			resp.Status = "degraded"
		}
	}
	for _, state := range resp.Dependencies {
		if state == DependencyDown {
			resp.Status = "degraded"
		}
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *HealthHandler) pingAll(ctx context.Context) map[string]string {
	names := make([]string, 0, len(h.dependencies))
	for name := range h.dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]string, len(names))
	)
	for _, name := range names {
		pinger := h.dependencies[name]
		if pinger == nil {
			out[name] = DependencyDisabled
			continue
		}
		wg.Add(1)
		go func(name string, p Pinger) {
			defer wg.Done()
			pingCtx, cancel := context.WithTimeout(ctx, dependencyPingTimeout)
			defer cancel()

			state := DependencyUp
			if err := p.Ping(pingCtx); err != nil {
				log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
				state = DependencyDown
			}
			mu.Lock()
			out[name] = state
			mu.Unlock()
		}(name, pinger)
	}
	wg.Wait()
	return out
}
