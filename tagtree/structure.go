// Package tagtree implements the tag layer (component B of spec.md): a
// dialect-parameterized parser and serializer for the line-oriented GEDC
// textual grammar, producing and consuming a forest of generic
// tag-structures (spec §3, §4.2).
//
// Structures are stored in a Forest's arena rather than linked by pointer,
// per spec §9 Design Notes: superstructure and reverse-reference fields are
// Handle indices into the arena, which sidesteps the reference cycles a
// pointer-based back-link (child -> parent -> child) would otherwise create
// in Go's garbage-collected but cycle-averse idiom of explicit ownership.
package tagtree

import "fmt"

// Handle indexes a Structure within a Forest. The zero Handle is not a
// sentinel; use NoHandle for "absent".
type Handle int

// NoHandle represents the absence of a structure reference.
const NoHandle Handle = -1

// PayloadKind discriminates the four possible shapes of a Structure's
// payload (spec §3 invariants, §9 Design Notes "payload polymorphism").
type PayloadKind int

const (
	// PayloadAbsent means the structure carries no payload at all.
	PayloadAbsent PayloadKind = iota
	// PayloadString means the structure carries a decoded text payload.
	PayloadString
	// PayloadPointer means the structure's payload references another
	// structure in the same forest.
	PayloadPointer
	// PayloadNullPointer means the payload is the "@VOID@" sentinel.
	PayloadNullPointer
)

// Payload is the tagged sum described in spec §3/§9: absent, string,
// pointer-handle, or null-pointer.
type Payload struct {
	Kind PayloadKind
	Str  string
	Ptr  Handle
}

// Structure is a single tag-structure: tag, payload, and links to its
// place in the forest (spec §3 "Tag-structure (layer B)").
type Structure struct {
	Tag     string
	Payload Payload

	// XRefID is the preferred cross-reference identifier to use when
	// serialization requires pointing at this structure; empty if none was
	// supplied or minted yet.
	XRefID string

	Parent       Handle
	Children     []Handle
	ReferencedBy []Handle

	// Line is the 1-based source line number this structure's own line
	// started on, used for error locality (spec §7).
	Line int
}

// HasXRef reports whether this structure has been assigned a cross-reference
// identifier.
func (s *Structure) HasXRef() bool { return s.XRefID != "" }

// IsPointedTo reports whether any other structure references this one.
func (s *Structure) IsPointedTo() bool { return len(s.ReferencedBy) > 0 }

// Forest owns a set of tag-structures connected by Handle. A Forest is the
// unit of construction for both the tagtree parser and builder callers, and
// the unit typed.Dataset conversion reads from (spec §3, §4.5).
type Forest struct {
	nodes   []Structure
	top     []Handle
	xrefIdx map[string]Handle
}

// NewForest returns an empty, ready-to-use Forest.
func NewForest() *Forest {
	return &Forest{xrefIdx: make(map[string]Handle)}
}

// Get returns the structure at h. Panics on an out-of-range handle, mirroring
// slice-index semantics; callers that may hold a stale handle should check
// against Forest.Len first.
func (f *Forest) Get(h Handle) *Structure {
	return &f.nodes[h]
}

// Len returns the number of structures stored in the forest.
func (f *Forest) Len() int { return len(f.nodes) }

// TopLevel returns the handles of every top-level (level-0) structure, in
// document order.
func (f *Forest) TopLevel() []Handle { return f.top }

// ByXRef looks up a structure by its cross-reference identifier.
func (f *Forest) ByXRef(xref string) (Handle, bool) {
	h, ok := f.xrefIdx[xref]
	return h, ok
}

// New allocates a structure with the given tag, links it under parent (or
// as a new top-level structure if parent is NoHandle), and returns its
// handle.
func (f *Forest) New(tag string, parent Handle) Handle {
	h := Handle(len(f.nodes))
	f.nodes = append(f.nodes, Structure{Tag: tag, Parent: parent})
	if parent == NoHandle {
		f.top = append(f.top, h)
	} else {
		p := f.Get(parent)
		p.Children = append(p.Children, h)
	}
	return h
}

// SetXRef assigns xref as h's preferred cross-reference identifier and
// indexes it. It is the caller's responsibility to ensure uniqueness
// (spec §3: "identifiers are unique within a forest").
func (f *Forest) SetXRef(h Handle, xref string) {
	f.Get(h).XRefID = xref
	if xref != "" {
		f.xrefIdx[xref] = h
	}
}

// SetString sets h's payload to a string, clearing any prior pointer.
func (f *Forest) SetString(h Handle, s string) {
	f.Get(h).Payload = Payload{Kind: PayloadString, Str: s}
}

// SetPointer sets h's payload to reference target, recording the back-edge
// on target.ReferencedBy (spec §3 invariant).
func (f *Forest) SetPointer(h, target Handle) {
	f.Get(h).Payload = Payload{Kind: PayloadPointer, Ptr: target}
	t := f.Get(target)
	t.ReferencedBy = append(t.ReferencedBy, h)
}

// SetNullPointer sets h's payload to the null-pointer ("@VOID@") sentinel.
func (f *Forest) SetNullPointer(h Handle) {
	f.Get(h).Payload = Payload{Kind: PayloadNullPointer}
}

func (p Payload) String() string {
	switch p.Kind {
	case PayloadAbsent:
		return "<absent>"
	case PayloadString:
		return fmt.Sprintf("%q", p.Str)
	case PayloadPointer:
		return fmt.Sprintf("-> #%d", p.Ptr)
	case PayloadNullPointer:
		return "@VOID@"
	default:
		return "<unknown>"
	}
}
