// Package planner implements the graph builder. It resolves specification
// names against the registry, expands propagated inputs, and produces a
// validated, fingerprinted build graph.
package planner

import (
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/registry"
	"go.trai.ch/zerr"
)

// Builder constructs build graphs from a specification store.
type Builder struct {
	reg *registry.Registry

	// propagated memoizes the propagated re-exposure set per package.
	propagated map[domain.InternedString][]domain.InputEdge
	expanding  map[domain.InternedString]bool
}

// New creates a Builder over the given registry.
func New(reg *registry.Registry) *Builder {
	return &Builder{
		reg:        reg,
		propagated: make(map[domain.InternedString][]domain.InputEdge),
		expanding:  make(map[domain.InternedString]bool),
	}
}

// Build returns a graph containing the transitive dependency closure
// reachable from the given root package names. Each name resolves to the
// latest registered version. It fails with ErrUnresolvedInput if a
// reference cannot be resolved, or ErrCyclicDependency (reporting the full
// cycle) if the closure is cyclic.
//
// Fingerprints are computed bottom-up before the graph is returned, so
// every node's cache key is fixed before scheduling begins.
func (b *Builder) Build(rootNames []string) (*domain.Graph, error) {
	if len(rootNames) == 0 {
		return nil, domain.ErrNoTargetsSpecified
	}

	g := domain.NewGraph()

	queue := make([]resolveRequest, 0, len(rootNames))
	for _, name := range rootNames {
		queue = append(queue, resolveRequest{name: domain.NewInternedString(name)})
	}

	for len(queue) > 0 {
		req := queue[0]
		queue = queue[1:]

		if _, ok := g.Node(req.name); ok {
			continue
		}

		spec, err := b.resolve(req)
		if err != nil {
			return nil, err
		}

		edges, err := b.effectiveInputs(spec)
		if err != nil {
			return nil, err
		}

		if err := g.AddNode(&domain.Node{Spec: spec, Inputs: edges}); err != nil {
			return nil, err
		}

		for _, edge := range edges {
			queue = append(queue, resolveRequest{name: edge.Name, requiredBy: spec.Name})
		}
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	fingerprint(g)
	return g, nil
}

type resolveRequest struct {
	name       domain.InternedString
	requiredBy domain.InternedString
}

func (b *Builder) resolve(req resolveRequest) (*domain.Specification, error) {
	spec, err := b.reg.Latest(req.name)
	if err != nil {
		uerr := zerr.With(domain.ErrUnresolvedInput, "input", req.name.String())
		if req.requiredBy.String() != "" {
			uerr = zerr.With(uerr, "required_by", req.requiredBy.String())
		}
		return nil, uerr
	}
	return spec, nil
}

// effectiveInputs returns the declared inputs of a specification plus the
// transitively re-exposed propagated inputs of each of them, deduplicated
// by name. The first occurrence of a name fixes its kind.
func (b *Builder) effectiveInputs(spec *domain.Specification) ([]domain.InputEdge, error) {
	seen := make(map[domain.InternedString]bool, len(spec.Inputs))
	edges := make([]domain.InputEdge, 0, len(spec.Inputs))

	add := func(e domain.InputEdge) {
		if seen[e.Name] {
			return
		}
		seen[e.Name] = true
		edges = append(edges, e)
	}

	for _, in := range spec.Inputs {
		add(domain.InputEdge{Name: in.Name, Kind: in.Kind})

		exposed, err := b.propagatedOf(in.Name)
		if err != nil {
			return nil, err
		}
		for _, e := range exposed {
			add(e)
		}
	}

	return edges, nil
}

// propagatedOf returns the inputs a package re-exposes to its dependents:
// its propagated inputs, and recursively theirs. Native inputs of
// propagated inputs do not propagate. Revisits during expansion are
// skipped; a genuine cycle is reported by graph validation with the full
// path instead.
func (b *Builder) propagatedOf(name domain.InternedString) ([]domain.InputEdge, error) {
	if cached, ok := b.propagated[name]; ok {
		return cached, nil
	}
	if b.expanding[name] {
		return nil, nil
	}
	b.expanding[name] = true
	defer delete(b.expanding, name)

	spec, err := b.reg.Latest(name)
	if err != nil {
		// Resolution errors surface later with required_by context.
		return nil, nil //nolint:nilerr // deferred to resolve()
	}

	var exposed []domain.InputEdge
	for _, in := range spec.Inputs {
		if in.Kind != domain.KindPropagated {
			continue
		}
		exposed = append(exposed, domain.InputEdge{Name: in.Name, Kind: domain.KindPropagated})

		deeper, err := b.propagatedOf(in.Name)
		if err != nil {
			return nil, err
		}
		exposed = append(exposed, deeper...)
	}

	b.propagated[name] = exposed
	return exposed, nil
}

// fingerprint computes node fingerprints bottom-up in topological order.
func fingerprint(g *domain.Graph) {
	for n := range g.Walk() {
		inputs := make([]domain.Fingerprint, 0, len(n.Inputs))
		for _, edge := range n.Inputs {
			dep, _ := g.Node(edge.Name)
			inputs = append(inputs, dep.Fingerprint)
		}
		n.Fingerprint = domain.ComputeFingerprint(n.Spec, inputs)
	}
}
