// Package typed implements the schema-driven typed structure and dataset
// (component E, spec §4.5): every tag is resolved to a registry URI (or
// kept as a bare extension tag when undocumented), payloads are parsed
// into the datatype classes from package datatype, and validation walks
// the schema's cardinality rules.
//
// Like tagtree, a Dataset owns its structures in an arena and links them
// by Handle rather than by pointer, for the same reason: superstructure
// and reverse-reference links would otherwise form cycles (spec §9
// Design Notes).
package typed

import (
	"sort"

	"github.com/cacack/ged7/diag"
	"github.com/cacack/ged7/schema"
)

// Handle indexes a Structure within a Dataset.
type Handle int

// NoHandle represents the absence of a structure reference.
const NoHandle Handle = -1

// PayloadKind discriminates a typed structure's payload shape (spec §3
// "Typed structure (layer E)").
type PayloadKind int

const (
	PayloadAbsent PayloadKind = iota
	PayloadString
	PayloadPointer
	PayloadNullPointer
)

// Payload is the typed-layer payload: either nothing, a parsed/serializable
// string form of one of the §4.3 datatypes, or a reference to another
// typed structure (possibly null).
type Payload struct {
	Kind  PayloadKind
	Str   string
	Ptr   Handle
	Value any // the parsed datatype.* value, when applicable (Date, Age, Time, ...)
}

// Structure is a single typed structure: its resolved type, payload, and
// links to its place in the dataset (spec §3, §4.5).
type Structure struct {
	// Type is either a registry URI, or a bare tag string when the type
	// is an undocumented extension (spec §3).
	Type string

	Payload Payload

	XRefID string

	Parent       Handle
	Children     map[string][]Handle // ordered per key by append order
	ReferencedBy []Handle

	Line int
}

// HasXRef reports whether this structure carries a cross-reference
// identifier.
func (s *Structure) HasXRef() bool { return s.XRefID != "" }

// IsPointedTo reports whether any other structure references this one.
func (s *Structure) IsPointedTo() bool { return len(s.ReferencedBy) > 0 }

// ChildrenOf returns the ordered children of the given type, or nil.
func (s *Structure) ChildrenOf(typeURI string) []Handle { return s.Children[typeURI] }

// AllChildren returns every child handle across all types, in the order
// their type-group was first populated; within a type-group, document
// order is preserved.
func (s *Structure) AllChildren() []Handle {
	keys := make([]string, 0, len(s.Children))
	for k, hs := range s.Children {
		if len(hs) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return s.Children[keys[i]][0] < s.Children[keys[j]][0] })
	var out []Handle
	for _, k := range keys {
		out = append(out, s.Children[k]...)
	}
	return out
}

// Dataset owns a set of typed structures connected by Handle, plus the
// schema lookup and diagnostic sink shared by every structure built
// against it (spec §4.5, §5: "each dataset owns its lookup wrapper,
// extension table, and error/warning sinks").
type Dataset struct {
	nodes   []Structure
	top     []Handle
	xrefIdx map[string]Handle

	Lookup *schema.Lookup
	Sink   *diag.Sink
}

// NewDataset returns an empty Dataset backed by lookup, reporting through
// sink.
func NewDataset(lookup *schema.Lookup, sink *diag.Sink) *Dataset {
	return &Dataset{xrefIdx: make(map[string]Handle), Lookup: lookup, Sink: sink}
}

// Get returns the structure at h.
func (d *Dataset) Get(h Handle) *Structure { return &d.nodes[h] }

// Len returns the number of structures in the dataset.
func (d *Dataset) Len() int { return len(d.nodes) }

// TopLevel returns the handles of every top-level (record) structure, in
// document order.
func (d *Dataset) TopLevel() []Handle { return d.top }

// ByXRef looks up a structure by its cross-reference identifier.
func (d *Dataset) ByXRef(xref string) (Handle, bool) {
	h, ok := d.xrefIdx[xref]
	return h, ok
}

func (d *Dataset) alloc(typ string, parent Handle) Handle {
	h := Handle(len(d.nodes))
	d.nodes = append(d.nodes, Structure{Type: typ, Parent: parent})
	if parent == NoHandle {
		d.top = append(d.top, h)
	} else {
		p := d.Get(parent)
		if p.Children == nil {
			p.Children = make(map[string][]Handle)
		}
		p.Children[typ] = append(p.Children[typ], h)
	}
	return h
}

// NewRecord creates a record-level (top-level) structure for tagOrURI,
// resolving it through the schema if it isn't already a URI (construction
// path (a), spec §4.5).
func (d *Dataset) NewRecord(tagOrURI string) Handle {
	typ := d.resolveType("", tagOrURI)
	return d.alloc(typ, NoHandle)
}

// NewChild creates a substructure of parent for tagOrURI (construction
// path (b)).
func (d *Dataset) NewChild(parent Handle, tagOrURI string) Handle {
	parentType := d.Get(parent).Type
	typ := d.resolveType(parentType, tagOrURI)
	return d.alloc(typ, parent)
}

// resolveType consults the schema lookup when tagOrURI doesn't already
// look like a URI (spec §4.5 "Tag→URI resolution").
func (d *Dataset) resolveType(containerURI, tagOrURI string) string {
	if looksLikeURI(tagOrURI) {
		return tagOrURI
	}
	if d.Lookup == nil {
		return tagOrURI
	}
	return d.Lookup.Substructure(containerURI, tagOrURI).URI
}

func looksLikeURI(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return i > 0
		}
		if !isURISchemeChar(s[i]) {
			return false
		}
	}
	return false
}

func isURISchemeChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '+' || b == '-' || b == '.'
}

// SetXRef assigns xref as h's cross-reference identifier and indexes it.
func (d *Dataset) SetXRef(h Handle, xref string) {
	d.Get(h).XRefID = xref
	if xref != "" {
		d.xrefIdx[xref] = h
	}
}

// SetString sets h's payload to a string form, clearing any prior pointer.
func (d *Dataset) SetString(h Handle, s string, value any) {
	d.Get(h).Payload = Payload{Kind: PayloadString, Str: s, Value: value}
}

// SetPointer sets h's payload to reference target, recording the back-edge.
func (d *Dataset) SetPointer(h, target Handle) {
	d.Get(h).Payload = Payload{Kind: PayloadPointer, Ptr: target}
	t := d.Get(target)
	t.ReferencedBy = append(t.ReferencedBy, h)
}

// SetNullPointer sets h's payload to the null-pointer sentinel.
func (d *Dataset) SetNullPointer(h Handle) {
	d.Get(h).Payload = Payload{Kind: PayloadNullPointer}
}
