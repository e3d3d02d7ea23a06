// Package selector implements the dot-path query grammar shared by the tag
// layer and the typed layer (spec §4.6, component F): ".HEAD.GEDC",
// "HEAD..VERS". It is written once, generically, against a small Node
// interface so the traversal state machine is never duplicated between the
// two layers, per spec's "Re-used verbatim between the tag and typed
// layers, varying only in what 'children' means".
package selector

import "strings"

// Node is the minimal shape a layer must expose to be queried: its own
// match key (tag string for the tag layer, type URI/tag for the typed
// layer) and its ordered children.
type Node interface {
	Key() string
	Children() []Node
}

// segment is one dot-separated path element, with a flag recording whether
// it was introduced by a double-dot ("descendant" rather than "direct
// child").
type segment struct {
	name       string
	descendant bool
}

// Path is a parsed selector expression, ready to run against any Node tree.
type Path struct {
	segments []segment
	anchored bool // a leading "." anchors the path to top-level roots
}

// Parse compiles a dot-path expression (spec §4.2 "Query selector"):
// segments separated by ".", a leading "." anchors to top level, ".."
// anywhere means descendant, a single "." means direct child. A path with
// leading non-"." content matches starting at any depth. Dots inside a
// URI's host name ("https://gedcom.io/...") stay part of the segment.
func Parse(path string) Path {
	if path == "" {
		return Path{}
	}
	anchored := strings.HasPrefix(path, ".")
	raw := path
	if anchored {
		raw = raw[1:]
	}

	var segs []segment
	var parts []string
	start := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] != '.' {
			continue
		}
		cur := raw[start:i]
		if j := strings.Index(cur, "://"); j >= 0 && !strings.Contains(cur[j+3:], "/") {
			continue // a dot inside a URI's host name
		}
		parts = append(parts, cur)
		start = i + 1
	}
	parts = append(parts, raw[start:])
	descendantNext := false
	for _, p := range parts {
		if p == "" {
			descendantNext = true
			continue
		}
		segs = append(segs, segment{name: p, descendant: descendantNext})
		descendantNext = false
	}
	return Path{segments: segs, anchored: anchored}
}

// Select returns every Node matching the path, rooted at roots, in document
// order.
func Select(roots []Node, path string) []Node {
	p := Parse(path)
	return p.run(roots)
}

// SelectOne returns the first match, or nil if none.
func SelectOne(roots []Node, path string) Node {
	matches := Select(roots, path)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

func (p Path) run(roots []Node) []Node {
	if len(p.segments) == 0 {
		return nil
	}

	candidates := roots
	if !p.anchored {
		candidates = collectAll(roots)
	}

	current := matchSegment(candidates, p.segments[0], true)
	for _, seg := range p.segments[1:] {
		current = advance(current, seg)
	}
	return current
}

// collectAll flattens a forest into every node at every depth, preserving
// document order (pre-order), used when a path isn't anchored to top level.
func collectAll(roots []Node) []Node {
	var out []Node
	var walk func(n Node)
	walk = func(n Node) {
		out = append(out, n)
		for _, c := range n.Children() {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

func matchSegment(candidates []Node, seg segment, isFirst bool) []Node {
	var out []Node
	for _, n := range candidates {
		if n.Key() == seg.name {
			out = append(out, n)
		}
	}
	return out
}

// advance moves from the current match set to the next segment: a direct
// child move (seg.descendant == false) only looks at immediate children;
// a descendant move (seg.descendant == true) looks at the whole subtree.
func advance(current []Node, seg segment) []Node {
	var out []Node
	for _, n := range current {
		var pool []Node
		if seg.descendant {
			for _, c := range n.Children() {
				pool = append(pool, collectAll([]Node{c})...)
			}
		} else {
			pool = n.Children()
		}
		out = append(out, matchSegment(pool, seg, false)...)
	}
	return out
}
