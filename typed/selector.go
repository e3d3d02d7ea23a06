package typed

import "github.com/cacack/ged7/selector"

// node adapts a (Dataset, Handle) pair to selector.Node, letting the
// shared dot-path grammar traverse a map-of-lists children shape the same
// way it traverses tagtree's plain list (spec §4.6).
type node struct {
	d *Dataset
	h Handle
}

func (n node) Key() string { return n.d.Get(n.h).Type }

func (n node) Children() []selector.Node {
	hs := n.d.Get(n.h).AllChildren()
	out := make([]selector.Node, len(hs))
	for i, h := range hs {
		out[i] = node{d: n.d, h: h}
	}
	return out
}

// Roots returns d's top-level structures as selector.Node, ready to pass
// to selector.Select/SelectOne.
func (d *Dataset) Roots() []selector.Node {
	tops := d.TopLevel()
	out := make([]selector.Node, len(tops))
	for i, h := range tops {
		out[i] = node{d: d, h: h}
	}
	return out
}

// HandleOf recovers the Handle backing a selector.Node produced by Roots,
// panicking if n did not originate from this dataset.
func (d *Dataset) HandleOf(n selector.Node) Handle {
	return n.(node).h
}
