package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidSpecification is returned when a specification entry is
	// malformed at load time. Metadata carries the offending field and reason.
	ErrInvalidSpecification = zerr.New("invalid specification")

	// ErrDuplicateSpecification is returned when registering a specification
	// whose (name, version) identity is already present.
	ErrDuplicateSpecification = zerr.New("duplicate specification")

	// ErrSpecificationNotFound is returned when a lookup cannot find a
	// specification by name (or name and version).
	ErrSpecificationNotFound = zerr.New("specification not found")

	// ErrUnresolvedInput is returned during graph construction when an input
	// reference cannot be resolved against the specification store.
	ErrUnresolvedInput = zerr.New("unresolved input")

	// ErrCyclicDependency is returned when the dependency closure contains a
	// cycle. Metadata carries the full ordered cycle path.
	ErrCyclicDependency = zerr.New("cyclic dependency")

	// ErrConflictingInputs is returned when two input names map to the same
	// build environment variable. Metadata carries both names and the
	// contested binding.
	ErrConflictingInputs = zerr.New("conflicting input bindings")

	// ErrFingerprintCollision is returned when a store put finds an existing
	// entry with the same fingerprint but different result content. It signals
	// non-determinism upstream and is always fatal.
	ErrFingerprintCollision = zerr.New("fingerprint collision")

	// ErrPhaseFailed is returned when a build phase action fails. Metadata
	// carries the phase name.
	ErrPhaseFailed = zerr.New("phase failed")

	// ErrBlocked marks a node that was never attempted because a transitive
	// dependency failed.
	ErrBlocked = zerr.New("blocked by failed dependency")

	// ErrCancelled marks a node whose in-flight execution was terminated by a
	// hard cancellation.
	ErrCancelled = zerr.New("cancelled")

	// ErrBuildFailed is the aggregate error returned when a run finishes with
	// failed or blocked nodes.
	ErrBuildFailed = zerr.New("build failed")

	// ErrResultNotFound is returned by the result store when no entry exists
	// for a fingerprint.
	ErrResultNotFound = zerr.New("build result not found")

	// ErrNoTargetsSpecified is returned when a build is requested without any
	// root packages.
	ErrNoTargetsSpecified = zerr.New("no targets specified")
)
