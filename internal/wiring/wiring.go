// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/mason/internal/adapters/cas"
	_ "go.trai.ch/mason/internal/adapters/config"
	_ "go.trai.ch/mason/internal/adapters/logger"
	_ "go.trai.ch/mason/internal/adapters/shell"
	_ "go.trai.ch/mason/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/mason/internal/app"
	_ "go.trai.ch/mason/internal/engine/scheduler"
)
