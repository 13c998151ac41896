// Package registry implements the specification store: an explicit,
// in-memory table of package specifications keyed by name and version.
// There is no process-wide global registry; an instance is passed to the
// planner.
package registry

import (
	"slices"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

// Registry holds loaded specifications. It is mutated only while loading
// and read-only during planning and scheduling, so reads need no locking.
type Registry struct {
	specs map[domain.InternedString][]*domain.Specification
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		specs: make(map[domain.InternedString][]*domain.Specification),
	}
}

// Register adds a specification to the store.
// It fails with ErrDuplicateSpecification if the (name, version) identity is
// already present.
func (r *Registry) Register(spec *domain.Specification) error {
	versions := r.specs[spec.Name]
	for _, existing := range versions {
		if existing.Version == spec.Version {
			err := zerr.With(domain.ErrDuplicateSpecification, "package", spec.Name.String())
			return zerr.With(err, "version", spec.Version.String())
		}
	}

	// Keep versions sorted descending so Latest is the first element.
	idx, _ := slices.BinarySearchFunc(versions, spec, func(a, b *domain.Specification) int {
		return -domain.CompareVersions(a.Version.String(), b.Version.String())
	})
	r.specs[spec.Name] = slices.Insert(versions, idx, spec)
	return nil
}

// Lookup returns the specification with the exact (name, version) identity.
func (r *Registry) Lookup(name domain.InternedString, version string) (*domain.Specification, error) {
	for _, spec := range r.specs[name] {
		if spec.Version.String() == version {
			return spec, nil
		}
	}
	err := zerr.With(domain.ErrSpecificationNotFound, "package", name.String())
	return nil, zerr.With(err, "version", version)
}

// Latest returns the highest registered version of a package, ordered by
// numeric-segment version comparison.
func (r *Registry) Latest(name domain.InternedString) (*domain.Specification, error) {
	versions := r.specs[name]
	if len(versions) == 0 {
		return nil, zerr.With(domain.ErrSpecificationNotFound, "package", name.String())
	}
	return versions[0], nil
}

// Len returns the number of registered specifications.
func (r *Registry) Len() int {
	n := 0
	for _, versions := range r.specs {
		n += len(versions)
	}
	return n
}

// Names returns the registered package names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name.String())
	}
	slices.Sort(names)
	return names
}
