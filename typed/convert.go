package typed

import (
	"fmt"

	"github.com/cacack/ged7/datatype"
	"github.com/cacack/ged7/diag"
	"github.com/cacack/ged7/schema"
	"github.com/cacack/ged7/tagtree"
)

// FromForest converts a parsed tag forest into a typed Dataset
// (construction path (c), spec §4.5). HEAD.SCHMA.TAG lines are consumed
// first so every other tag resolves against a complete extension table.
func FromForest(f *tagtree.Forest, lookup *schema.Lookup, sink *diag.Sink) *Dataset {
	d := NewDataset(lookup, sink)
	registerSchemaExtensions(f, lookup)

	identity := make(map[tagtree.Handle]Handle)
	var pendingPointers []struct {
		typedH tagtree.Handle
		h      Handle
	}

	var build func(th tagtree.Handle, parent Handle) Handle
	build = func(th tagtree.Handle, parent Handle) Handle {
		ts := f.Get(th)
		containerURI := ""
		if parent != NoHandle {
			containerURI = d.Get(parent).Type
		}
		typ := d.resolveType(containerURI, ts.Tag)

		var h Handle
		if parent == NoHandle {
			h = d.alloc(typ, NoHandle)
		} else {
			h = d.alloc(typ, parent)
		}
		identity[th] = h
		d.Get(h).Line = ts.Line
		if ts.HasXRef() {
			d.SetXRef(h, stripAtSigns(ts.XRefID))
		}

		switch ts.Payload.Kind {
		case tagtree.PayloadString:
			assignTypedPayload(d, h, typ, ts.Payload.Str)
		case tagtree.PayloadPointer:
			pendingPointers = append(pendingPointers, struct {
				typedH tagtree.Handle
				h      Handle
			}{ts.Payload.Ptr, h})
		case tagtree.PayloadNullPointer:
			d.SetNullPointer(h)
		}

		for _, c := range ts.Children {
			build(c, h)
		}
		return h
	}

	for _, th := range f.TopLevel() {
		if f.Get(th).Tag == "TRLR" {
			continue
		}
		build(th, NoHandle)
	}

	// Pointer fix-up (spec §4.5): swap tag-structure targets for their
	// typed counterpart via the identity map; pointers to non-top-level
	// structures are rejected.
	for _, p := range pendingPointers {
		target, ok := identity[p.typedH]
		if !ok || d.Get(target).Parent != NoHandle {
			sink.Err(diag.AtLine(d.Get(p.h).Line), "pointer to a substructure is not permitted")
			d.SetNullPointer(p.h)
			continue
		}
		d.SetPointer(p.h, target)
	}

	return d
}

func registerSchemaExtensions(f *tagtree.Forest, lookup *schema.Lookup) {
	if lookup == nil {
		return
	}
	for _, th := range f.TopLevel() {
		head := f.Get(th)
		if head.Tag != "HEAD" {
			continue
		}
		for _, c := range head.Children {
			if f.Get(c).Tag != "SCHMA" {
				continue
			}
			for _, tagLine := range f.Get(c).Children {
				tl := f.Get(tagLine)
				if tl.Tag != "TAG" || tl.Payload.Kind != tagtree.PayloadString {
					continue
				}
				tag, uri := splitSchmaPayload(tl.Payload.Str)
				if tag != "" {
					lookup.AddExtension(tag, uri)
				}
			}
		}
	}
}

func stripAtSigns(s string) string {
	if len(s) >= 2 && s[0] == '@' && s[len(s)-1] == '@' {
		return s[1 : len(s)-1]
	}
	return s
}

func splitSchmaPayload(s string) (tag, uri string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}

// assignTypedPayload parses raw against typ's payload-class table
// (spec §4.3/§4.5), wrapping the dataset's sink with the target type URI
// prefix while parsing, per §4.5 "transiently wrapped to prefix messages
// with the target type URI".
func assignTypedPayload(d *Dataset, h Handle, typ, raw string) {
	if d.Lookup == nil {
		d.SetString(h, raw, nil)
		return
	}
	spec := d.Lookup.Payload(typ)
	loc := diag.AtLine(d.Get(h).Line)
	var sink diag.Sinker = d.Sink.Prefixed(typ)

	switch spec.Type {
	case "Integer", "NonNegativeInteger":
		n := datatype.NonNegativeInteger(raw, loc, sink)
		d.SetString(h, fmt.Sprintf("%d", n), n)
	case "Name":
		d.SetString(h, datatype.Name(raw, loc, sink), nil)
	case "Language":
		d.SetString(h, datatype.Language(raw, loc, sink), nil)
	case "MediaType":
		d.SetString(h, datatype.MediaType(raw, loc, sink), nil)
	case "Y|<NULL>":
		d.SetString(h, datatype.YesOrEmpty(raw, loc, sink), nil)
	case "Age":
		a := datatype.ParseAge(raw, loc, sink)
		d.SetString(h, a.String(), a)
	case "Time":
		tm := datatype.ParseTime(raw, loc, sink)
		d.SetString(h, tm.String(), tm)
	case "Date":
		dt := datatype.ParseDate(raw, d.Lookup, loc, sink)
		d.SetString(h, dt.String(), dt)
	case "Date#period":
		dv := datatype.ParseDateValue(raw, d.Lookup, true, loc, sink)
		d.SetString(h, dv.String(), dv)
	case "DateValue":
		dv := datatype.ParseDateValue(raw, d.Lookup, false, loc, sink)
		d.SetString(h, dv.String(), dv)
	case "Enum":
		d.SetString(h, datatype.Enum(spec.Set, raw, d.Lookup, loc, sink), nil)
	case "List#Text":
		d.SetString(h, raw, datatype.List(raw))
	case "List#Enum":
		elems := datatype.List(raw)
		for i, e := range elems {
			elems[i] = datatype.Enum(spec.Set, e, d.Lookup, loc, sink)
		}
		d.SetString(h, datatype.JoinList(elems), elems)
	default:
		d.SetString(h, raw, nil)
	}
}
