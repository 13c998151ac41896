// Package domain contains the core domain models for the build orchestrator:
// package specifications, the dependency graph, fingerprints and build results.
package domain

// InputKind classifies a declared input reference.
type InputKind string

const (
	// KindRegular is an ordinary build-and-runtime dependency.
	KindRegular InputKind = "regular"
	// KindNative is a dependency needed only to perform the build itself.
	// It orders the build but is excluded from the runtime closure.
	KindNative InputKind = "native"
	// KindPropagated is a dependency that is re-exposed to every package
	// depending on the package that declares it.
	KindPropagated InputKind = "propagated"
)

// Valid reports whether k is one of the three known input kinds.
func (k InputKind) Valid() bool {
	switch k {
	case KindRegular, KindNative, KindPropagated:
		return true
	}
	return false
}

// InputRef is an unresolved input reference as declared in a specification.
type InputRef struct {
	Name InternedString
	Kind InputKind
}

// SourceDescriptor describes where and how the package source is fetched.
type SourceDescriptor struct {
	// Method is the fetch method, "url" or "git".
	Method string
	// Location is the tarball URL or repository address.
	Location string
	// Revision pins a git revision. Empty for url sources.
	Revision string
	// Checksum is the expected integrity hash of the fetched source.
	Checksum string
}

// OverrideKind is the tagged-variant selector for per-phase overrides.
type OverrideKind string

const (
	// OverrideNone runs the phase's declared action unchanged.
	OverrideNone OverrideKind = ""
	// OverrideSkip drops the phase entirely.
	OverrideSkip OverrideKind = "skip"
	// OverrideReplace runs the replacement action instead of the declared one.
	OverrideReplace OverrideKind = "replace"
)

// Phase is one named build step of a specification.
// The conventional sequence is unpack, patch, configure, build, check, install.
type Phase struct {
	Name InternedString
	// Action is the declared default action for this phase.
	Action string
	// Override selects skip/replace behavior for this phase.
	Override OverrideKind
	// With is the replacement action. Only meaningful with OverrideReplace.
	With string
}

// Effective resolves the override and returns the action to run.
// The boolean is false when the phase is skipped.
func (p Phase) Effective() (string, bool) {
	switch p.Override {
	case OverrideSkip:
		return "", false
	case OverrideReplace:
		return p.With, true
	default:
		return p.Action, true
	}
}

// Specification is the immutable declarative description of one buildable
// package. Identity is (Name, Version). Specifications are never mutated
// after loading.
type Specification struct {
	Name        InternedString
	Version     InternedString
	Source      SourceDescriptor
	Inputs      []InputRef
	Phases      []Phase
	License     string
	Description string
}

// ID returns the name@version identity of the specification.
func (s *Specification) ID() string {
	return s.Name.String() + "@" + s.Version.String()
}
