package tagtree

import "github.com/cacack/ged7/selector"

// node adapts a (Forest, Handle) pair to selector.Node so the shared
// dot-path grammar (package selector) can traverse the tag layer the same
// way it traverses typed.Dataset (spec §4.6).
type node struct {
	f *Forest
	h Handle
}

func (n node) Key() string { return n.f.Get(n.h).Tag }

func (n node) Children() []selector.Node {
	cs := n.f.Get(n.h).Children
	out := make([]selector.Node, len(cs))
	for i, c := range cs {
		out[i] = node{f: n.f, h: c}
	}
	return out
}

// Roots returns f's top-level structures as selector.Node.
func (f *Forest) Roots() []selector.Node {
	tops := f.TopLevel()
	out := make([]selector.Node, len(tops))
	for i, h := range tops {
		out[i] = node{f: f, h: h}
	}
	return out
}

// HandleOf recovers the Handle backing a selector.Node produced by Roots.
func (f *Forest) HandleOf(n selector.Node) Handle {
	return n.(node).h
}
