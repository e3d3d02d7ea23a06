package datatype

import "github.com/cacack/ged7/diag"

// EnumResolver is the slice of schema.Lookup that Enum parsing needs: a
// tag is resolved to its value URI within a named set (spec §4.3 "Enum").
type EnumResolver interface {
	// Enumval resolves tag within the set named setURI. ok is false when
	// the tag could not be placed in the set at all (including via alias
	// or extension).
	Enumval(setURI, tag string) (uri string, ok bool)
}

// Enum resolves tag against setURI through resolver, reporting and
// returning the bare tag on failure. Resolver diagnostics (aliased,
// unregistered) are expected to have already been emitted by the
// resolver itself; this wrapper only reports outright resolution failure.
func Enum(setURI, tag string, resolver EnumResolver, loc diag.Locator, sink diag.Sinker) string {
	if tag == "" {
		return ""
	}
	if resolver == nil {
		return tag
	}
	uri, ok := resolver.Enumval(setURI, tag)
	if !ok {
		sink.Err(loc, "unresolvable enumeration value \""+tag+"\" in set "+setURI)
		return tag
	}
	return uri
}
