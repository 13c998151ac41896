package domain

// InputEdge is one resolved dependency edge of a node, tagged with the kind
// of the declaring reference.
type InputEdge struct {
	Name InternedString
	Kind InputKind
}

// Node is one resolved specification instance within a concrete build plan.
// Nodes are created during graph construction, owned exclusively by the
// Graph, and referenced by name elsewhere.
type Node struct {
	Spec *Specification

	// Inputs is the effective input set: declared inputs plus transitively
	// re-exposed propagated inputs, deduplicated, in resolution order.
	Inputs []InputEdge

	// Fingerprint is populated by the planner once all input fingerprints
	// are known.
	Fingerprint Fingerprint
}

// Name returns the node's package name.
func (n *Node) Name() InternedString {
	return n.Spec.Name
}

// InputNames returns the names of all effective inputs.
func (n *Node) InputNames() []InternedString {
	names := make([]InternedString, len(n.Inputs))
	for i, in := range n.Inputs {
		names[i] = in.Name
	}
	return names
}
