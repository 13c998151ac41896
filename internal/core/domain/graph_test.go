package domain_test

import (
	"errors"
	"testing"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/zerr"
)

func spec(name string, inputs ...domain.InputRef) *domain.Specification {
	return &domain.Specification{
		Name:    domain.NewInternedString(name),
		Version: domain.NewInternedString("1.0"),
		Inputs:  inputs,
	}
}

func node(s *domain.Specification) *domain.Node {
	edges := make([]domain.InputEdge, len(s.Inputs))
	for i, in := range s.Inputs {
		edges[i] = domain.InputEdge{Name: in.Name, Kind: in.Kind}
	}
	return &domain.Node{Spec: s, Inputs: edges}
}

func ref(name string, kind domain.InputKind) domain.InputRef {
	return domain.InputRef{Name: domain.NewInternedString(name), Kind: kind}
}

func TestGraph_AddNode_Duplicate(t *testing.T) {
	g := domain.NewGraph()
	n := node(spec("zlib"))

	if err := g.AddNode(n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := g.AddNode(node(spec("zlib")))
	if err == nil {
		t.Fatal("expected error when adding duplicate node, got nil")
	}
	if !errors.Is(err, domain.ErrDuplicateSpecification) {
		t.Errorf("expected ErrDuplicateSpecification, got %v", err)
	}
}

func TestGraph_Validate_TopologicalOrder(t *testing.T) {
	g := domain.NewGraph()
	// app -> lib -> zlib
	_ = g.AddNode(node(spec("app", ref("lib", domain.KindRegular))))
	_ = g.AddNode(node(spec("lib", ref("zlib", domain.KindRegular))))
	_ = g.AddNode(node(spec("zlib")))

	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var order []string
	for n := range g.Walk() {
		order = append(order, n.Name().String())
	}

	want := []string{"zlib", "lib", "app"}
	if len(order) != len(want) {
		t.Fatalf("got order %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("got order %v, want %v", order, want)
			break
		}
	}
}

func TestGraph_Validate_Cycle(t *testing.T) {
	g := domain.NewGraph()
	_ = g.AddNode(node(spec("a", ref("b", domain.KindRegular))))
	_ = g.AddNode(node(spec("b", ref("a", domain.KindRegular))))

	err := g.Validate()
	if err == nil {
		t.Fatal("expected error for cycle, got nil")
	}
	if !errors.Is(err, domain.ErrCyclicDependency) {
		t.Fatalf("expected ErrCyclicDependency, got %v", err)
	}

	var zErr *zerr.Error
	if !errors.As(err, &zErr) {
		t.Fatalf("expected *zerr.Error, got %T", err)
	}
	cycle, ok := zErr.Metadata()["cycle"].(string)
	if !ok {
		t.Fatal("expected cycle metadata")
	}
	// Roots are visited in sorted name order, so the cycle starts at "a".
	if cycle != "a -> b -> a" {
		t.Errorf("expected full cycle path 'a -> b -> a', got %q", cycle)
	}
}

func TestGraph_Validate_DanglingEdge(t *testing.T) {
	g := domain.NewGraph()
	_ = g.AddNode(node(spec("app", ref("ghost", domain.KindRegular))))

	err := g.Validate()
	if err == nil {
		t.Fatal("expected error for dangling edge, got nil")
	}
	if !errors.Is(err, domain.ErrUnresolvedInput) {
		t.Errorf("expected ErrUnresolvedInput, got %v", err)
	}
}

func TestGraph_Dependents(t *testing.T) {
	g := domain.NewGraph()
	_ = g.AddNode(node(spec("app", ref("zlib", domain.KindRegular))))
	_ = g.AddNode(node(spec("lib", ref("zlib", domain.KindRegular))))
	_ = g.AddNode(node(spec("zlib")))

	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deps := g.Dependents(domain.NewInternedString("zlib"))
	if len(deps) != 2 {
		t.Fatalf("expected 2 dependents, got %d", len(deps))
	}
}

func TestGraph_RuntimeClosure_ExcludesNative(t *testing.T) {
	g := domain.NewGraph()
	// app depends on lib (regular) and gcc (native);
	// lib depends on zlib (propagated) and make (native).
	_ = g.AddNode(node(spec("app",
		ref("lib", domain.KindRegular),
		ref("gcc", domain.KindNative),
	)))
	_ = g.AddNode(node(spec("lib",
		ref("zlib", domain.KindPropagated),
		ref("make", domain.KindNative),
	)))
	_ = g.AddNode(node(spec("zlib")))
	_ = g.AddNode(node(spec("gcc")))
	_ = g.AddNode(node(spec("make")))

	if err := g.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	closure, err := g.RuntimeClosure(domain.NewInternedString("app"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := make(map[string]bool)
	for _, name := range closure {
		got[name.String()] = true
	}
	if !got["lib"] || !got["zlib"] {
		t.Errorf("closure missing runtime deps: %v", closure)
	}
	if got["gcc"] || got["make"] {
		t.Errorf("closure must exclude native inputs: %v", closure)
	}
}
