package domain

import (
	"iter"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph is the set of resolved nodes plus directed dependency edges.
// It is acyclic after a successful Validate and read-only thereafter; the
// scheduler requires no locking to consult it.
type Graph struct {
	nodes      map[InternedString]*Node
	order      []InternedString
	index      map[InternedString]int
	dependents map[InternedString][]InternedString
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[InternedString]*Node),
	}
}

// AddNode adds a node to the graph.
// It returns an error if a node with the same name already exists.
func (g *Graph) AddNode(n *Node) error {
	if _, exists := g.nodes[n.Name()]; exists {
		return zerr.With(ErrDuplicateSpecification, "package", n.Name().String())
	}
	g.nodes[n.Name()] = n
	return nil
}

// Node returns the node with the given name.
func (g *Graph) Node(name InternedString) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Validate checks that every edge resolves to a node in the graph and that
// the graph is acyclic. On success it populates the topological order
// (dependencies first) and the reverse-edge index. Roots are visited in
// sorted name order so the resulting order is deterministic for a given
// node set.
func (g *Graph) Validate() error {
	g.order = make([]InternedString, 0, len(g.nodes))
	g.index = make(map[InternedString]int, len(g.nodes))
	g.dependents = make(map[InternedString][]InternedString, len(g.nodes))

	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[InternedString]int, len(g.nodes))
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		state[u] = visiting
		path = append(path, u)

		node, exists := g.nodes[u]
		if !exists {
			return zerr.With(ErrUnresolvedInput, "input", u.String())
		}

		for _, edge := range node.Inputs {
			switch state[edge.Name] {
			case visiting:
				return g.cycleError(path, edge.Name)
			case unvisited:
				if err := visit(edge.Name); err != nil {
					return err
				}
			}
		}

		state[u] = visited
		path = path[:len(path)-1]
		g.index[u] = len(g.order)
		g.order = append(g.order, u)
		return nil
	}

	for _, name := range g.sortedNames() {
		if state[name] == unvisited {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	for _, name := range g.order {
		for _, edge := range g.nodes[name].Inputs {
			g.dependents[edge.Name] = append(g.dependents[edge.Name], name)
		}
	}

	return nil
}

// cycleError reports the full ordered cycle, not just the repeated node.
func (g *Graph) cycleError(path []InternedString, repeated InternedString) error {
	start := slices.Index(path, repeated)
	cycle := make([]string, 0, len(path)-start+1)
	for _, name := range path[start:] {
		cycle = append(cycle, name.String())
	}
	cycle = append(cycle, repeated.String())
	return zerr.With(ErrCyclicDependency, "cycle", strings.Join(cycle, " -> "))
}

// Walk returns an iterator yielding nodes in topological order, dependencies
// first. It assumes Validate has been called and returned nil.
func (g *Graph) Walk() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, name := range g.order {
			if !yield(g.nodes[name]) {
				return
			}
		}
	}
}

// Index returns the topological index of a node. Lower indices never depend
// on higher ones.
func (g *Graph) Index(name InternedString) int {
	return g.index[name]
}

// Dependents returns the names of nodes that directly depend on the given
// node, in topological order.
func (g *Graph) Dependents(name InternedString) []InternedString {
	return g.dependents[name]
}

// RuntimeClosure returns the transitive dependency closure of a node
// following only non-native edges. Native inputs order the build but are
// not exposed to downstream consumers.
func (g *Graph) RuntimeClosure(name InternedString) ([]InternedString, error) {
	root, ok := g.nodes[name]
	if !ok {
		return nil, zerr.With(ErrSpecificationNotFound, "package", name.String())
	}

	seen := map[InternedString]bool{name: true}
	queue := []*Node{root}
	var closure []InternedString

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, edge := range n.Inputs {
			if edge.Kind == KindNative || seen[edge.Name] {
				continue
			}
			seen[edge.Name] = true
			closure = append(closure, edge.Name)
			queue = append(queue, g.nodes[edge.Name])
		}
	}

	slices.SortFunc(closure, func(a, b InternedString) int {
		return strings.Compare(a.String(), b.String())
	})
	return closure, nil
}

func (g *Graph) sortedNames() []InternedString {
	names := make([]InternedString, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b InternedString) int {
		return strings.Compare(a.String(), b.String())
	})
	return names
}
