package app

import (
	"go.trai.ch/mason/internal/core/ports"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
	// Tracer is exposed so the CLI can flush and close the progress
	// output once the run finishes.
	Tracer ports.Tracer
}
