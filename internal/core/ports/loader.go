package ports

import "go.trai.ch/mason/internal/core/domain"

// SpecLoader loads declarative package specifications from a file or a
// directory of files.
//
//go:generate go run go.uber.org/mock/mockgen -source=loader.go -destination=mocks/mock_loader.go -package=mocks
type SpecLoader interface {
	// Load reads all specifications from the given path. Malformed entries
	// fail the whole load with domain.ErrInvalidSpecification.
	Load(path string) ([]*domain.Specification, error)
}
