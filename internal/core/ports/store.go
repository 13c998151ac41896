package ports

import "go.trai.ch/mason/internal/core/domain"

// ResultStore maps fingerprints to previously produced build results.
// Lookups are safe to call concurrently with puts for distinct fingerprints.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ResultStore interface {
	// Lookup returns the stored result for a fingerprint.
	// Returns domain.ErrResultNotFound if no entry exists.
	Lookup(fp domain.Fingerprint) (domain.BuildResult, error)

	// Put stores a result under its fingerprint. An existing entry with the
	// same fingerprint but different content fails with
	// domain.ErrFingerprintCollision; it is never overwritten.
	Put(fp domain.Fingerprint, result domain.BuildResult) error
}
