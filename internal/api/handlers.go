package api

import (
	"github.com/mergington/activities/internal/metrics"
	"github.com/mergington/activities/internal/roster"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	registry *roster.Registry
	recorder *metrics.Recorder
}

// NewHandlers creates a new Handlers instance. recorder may be nil.
func NewHandlers(registry *roster.Registry, recorder *metrics.Recorder) *Handlers {
	return &Handlers{
		registry: registry,
		recorder: recorder,
	}
}
