package typed

import "github.com/cacack/ged7/diag"

// Validate walks h and its descendants against the schema's cardinality
// rules, reporting through the dataset's sink, and returns the total
// number of errors found (spec §4.5 "Validation").
func (d *Dataset) Validate(h Handle) int {
	return d.validate(h)
}

// ValidateAll validates every top-level structure.
func (d *Dataset) ValidateAll() int {
	total := 0
	for _, h := range d.TopLevel() {
		total += d.validate(h)
	}
	return total
}

func (d *Dataset) validate(h Handle) int {
	s := d.Get(h)
	errCount := 0
	loc := diag.AtLine(s.Line)

	// 1. Remove empty child lists.
	for typ, hs := range s.Children {
		if len(hs) == 0 {
			delete(s.Children, typ)
		}
	}

	// 2. Cardinality, against the container's schema.
	if d.Lookup != nil {
		required := d.Lookup.RequiredChildren(s.Type)
		for _, childURI := range required {
			if len(s.Children[childURI]) == 0 {
				d.Sink.Err(loc, "missing required child "+childURI)
				errCount++
			}
		}
		for typ, hs := range s.Children {
			entry := d.Lookup.Substructure(s.Type, d.Lookup.Tag(typ, false))
			if entry.Spec.Cardinality != "" && entry.Spec.ParsedCardinality().Singular() && len(hs) > 1 {
				d.Sink.Err(diag.AtChild(s.Type, typ), "structure may occur at most once")
				errCount++
			}
		}
	}

	// 3. Empty structure: no children, payload absent/empty.
	if len(s.Children) == 0 && payloadIsEmpty(s.Payload) {
		d.Sink.Err(loc, "structure has neither payload nor children")
		errCount++
	}

	// 4. Payload type-class check already occurred at construction time
	// (assignTypedPayload); nothing further to do here.

	// 5. Pointer-target type: payload(URI).to, when declared, constrains
	// which record type a pointer payload may resolve to.
	if d.Lookup != nil && s.Payload.Kind == PayloadPointer {
		if to := d.Lookup.Payload(s.Type).To; to != "" {
			if target := d.Get(s.Payload.Ptr).Type; target != to {
				d.Sink.Err(loc, "pointer target type "+target+" does not match declared target type "+to)
				errCount++
			}
		}
	}

	// 6. Deprecation: EXID without EXID-TYPE.
	if isEXID(s.Type, d) && len(s.Children["https://gedcom.io/terms/v7/EXID-TYPE"]) == 0 {
		d.Sink.Warn(loc, "EXID without EXID-TYPE is deprecated")
	}

	// 7. Recurse.
	for _, hs := range s.Children {
		for _, c := range hs {
			errCount += d.validate(c)
		}
	}
	return errCount
}

func isEXID(typ string, d *Dataset) bool {
	if d.Lookup != nil {
		return d.Lookup.Tag(typ, false) == "EXID"
	}
	return typ == "EXID"
}

func payloadIsEmpty(p Payload) bool {
	switch p.Kind {
	case PayloadAbsent:
		return true
	case PayloadString:
		return p.Str == ""
	default:
		return false
	}
}
