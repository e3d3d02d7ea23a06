package schema

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cacack/ged7/diag"
)

// Resolution classifies how a tag was placed in context, per spec §4.4's
// five-way description of substructure/calendar/month/enumval resolution.
type Resolution int

const (
	// ResStandard: the tag is a standard member of the container/set.
	ResStandard Resolution = iota
	// ResExtensionInSchema: an extension tag (leading "_") registered via
	// HEAD.SCHMA.TAG and resolved to a known registry URI.
	ResExtensionInSchema
	// ResUnregisteredDocumented: an extension tag registered via SCHMA but
	// whose URI is not in the authoritative registry.
	ResUnregisteredDocumented
	// ResUndocumented: an extension tag used with no SCHMA entry at all.
	ResUndocumented
	// ResRelocated: a standard tag used somewhere other than its
	// documented placement.
	ResRelocated
)

// Entry is the result of a substructure/calendar/enum resolution: the
// resolved URI (or bare tag, when unresolved) plus how it was resolved.
type Entry struct {
	URI        string
	Spec       SubstructureSpec
	Resolution Resolution
}

// Lookup is the mutable, per-dataset wrapper around a Schema: it carries
// an extension table populated from HEAD.SCHMA.TAG lines, diagnostic
// dedup sets, and a memoization cache for repeated resolutions (spec §4.4,
// §5 "each dataset owns its lookup wrapper, extension table, and
// error/warning sinks").
type Lookup struct {
	schema *Schema
	sink   *diag.Sink

	// extensions maps a registered extension tag to the URI it was bound
	// to via HEAD.SCHMA.TAG (addExtension).
	extensions map[string]string

	dedup map[string]struct{}
	cache *lru.Cache[string, Entry]

	// Trace, if set, is called with every freshly resolved (container, tag)
	// -> URI triple (cache hits are not re-traced). Callers wire this to a
	// structured logger for verbose diagnostics (spec §7 "added"); nil is
	// the default and costs nothing.
	Trace func(container, tag, uri string)
}

// NewLookup wraps schema for a single dataset's parse, emitting
// diagnostics to sink.
func NewLookup(schema *Schema, sink *diag.Sink) *Lookup {
	cache, _ := lru.New[string, Entry](1024)
	return &Lookup{
		schema:     schema,
		sink:       sink,
		extensions: make(map[string]string),
		dedup:      make(map[string]struct{}),
		cache:      cache,
	}
}

// AddExtension registers tag -> uri from a HEAD.SCHMA.TAG line (spec
// §4.4). A tag already bound to a different URI is reported as ambiguous
// before the new binding takes effect (last HEAD.SCHMA.TAG line wins,
// matching document order).
func (l *Lookup) AddExtension(tag, uri string) {
	if existing, ok := l.extensions[tag]; ok && existing != uri {
		l.ambig("", tag)
	}
	l.extensions[tag] = uri
}

func isExtensionTag(tag string) bool { return strings.HasPrefix(tag, "_") }

// Substructure resolves tag within containerURI, per spec §4.4's five-way
// rule. containerURI == "" means "record level" (the tag is a top-level
// record type).
func (l *Lookup) Substructure(containerURI, tag string) Entry {
	key := "sub:" + containerURI + ":" + tag
	if e, ok := l.cacheGet(key); ok {
		return e
	}

	children, containerKnown := l.schema.Substructure[containerURI]
	if spec, ok := children[tag]; ok {
		e := Entry{URI: spec.Type, Spec: spec, Resolution: ResStandard}
		l.cacheSet(key, e)
		l.trace(containerURI, tag, e.URI)
		return e
	}

	if isExtensionTag(tag) {
		e := l.resolveExtension(tag, containerURI)
		l.cacheSet(key, e)
		l.trace(containerURI, tag, e.URI)
		return e
	}

	// A standard tag absent from this container: if the container itself
	// is unrecognized, treat the tag as a record-level type and report it
	// relocated if it's a standard tag elsewhere; if the container is
	// recognized but simply doesn't admit this tag, it's prohibited here
	// (spec §4.4).
	alias, foundElsewhere := l.findStandardTagElsewhere(tag)
	switch {
	case foundElsewhere && !containerKnown:
		l.relocated(containerURI, tag)
		e := Entry{URI: alias.spec.Type, Spec: alias.spec, Resolution: ResRelocated}
		l.cacheSet(key, e)
		l.trace(containerURI, tag, e.URI)
		return e
	default:
		l.prohibited(containerURI, tag)
		e := Entry{URI: tag, Resolution: ResRelocated}
		l.cacheSet(key, e)
		l.trace(containerURI, tag, e.URI)
		return e
	}
}

func (l *Lookup) trace(container, tag, uri string) {
	if l.Trace != nil {
		l.Trace(container, tag, uri)
	}
}

func (l *Lookup) findStandardTagElsewhere(tag string) (aliasEntry, bool) {
	for container, tags := range l.schema.Substructure {
		if spec, ok := tags[tag]; ok {
			return aliasEntry{container: container, tag: tag, spec: spec}, true
		}
	}
	return aliasEntry{}, false
}

// resolveExtension implements the undocumented/unregistered/aliased
// branches shared by Substructure, Calendar, Month, and Enumval.
func (l *Lookup) resolveExtension(tag, container string) Entry {
	uri, registered := l.extensions[tag]
	if !registered {
		l.undoc(container, tag)
		return Entry{URI: tag, Resolution: ResUndocumented}
	}
	if alias, ok := l.schema.aliasSubstructure[uri]; ok {
		if _, standardExists := l.schema.Substructure[container][alias.tag]; standardExists {
			l.aliased(container, tag, alias.tag)
		}
		return Entry{URI: uri, Spec: alias.spec, Resolution: ResExtensionInSchema}
	}
	l.unreg(container, tag, uri)
	return Entry{URI: uri, Resolution: ResUnregisteredDocumented}
}

// Calendar resolves a HEAD-level calendar tag to its registry entry,
// following the same five-way shape as Substructure.
func (l *Lookup) Calendar(tag string) (CalendarSpec, Resolution) {
	if spec, ok := l.schema.Calendar[tag]; ok {
		return spec, ResStandard
	}
	if isExtensionTag(tag) {
		if uri, ok := l.extensions[tag]; ok {
			if calTag, ok := l.schema.aliasCalendar[uri]; ok {
				return l.schema.Calendar[calTag], ResExtensionInSchema
			}
			l.unreg("", tag, uri)
			return CalendarSpec{Type: uri}, ResUnregisteredDocumented
		}
		l.undoc("", tag)
		return CalendarSpec{}, ResUndocumented
	}
	return CalendarSpec{}, ResRelocated
}

// KnownCalendar implements datatype.MonthResolver.
func (l *Lookup) KnownCalendar(tag string) bool {
	_, ok := l.schema.Calendar[tag]
	return ok
}

// Epochs implements datatype.MonthResolver.
func (l *Lookup) Epochs(tag string) []string {
	return l.schema.Calendar[tag].Epochs
}

// Month implements datatype.MonthResolver: resolves a month tag within
// calendar, consulting the extension table the same way Substructure
// does.
func (l *Lookup) Month(calendar, tag string) (string, bool) {
	cal, ok := l.schema.Calendar[calendar]
	if !ok {
		return "", false
	}
	if uri, ok := cal.Months[tag]; ok {
		return uri, true
	}
	if isExtensionTag(tag) {
		if uri, ok := l.extensions[tag]; ok {
			return uri, true
		}
		l.undoc(calendar, tag)
	}
	return "", false
}

// Enumval implements datatype.EnumResolver: resolves tag within setURI.
func (l *Lookup) Enumval(setURI, tag string) (string, bool) {
	vals := l.schema.Set[setURI]
	if uri, ok := vals[tag]; ok {
		return uri, true
	}
	if isExtensionTag(tag) {
		uri, registered := l.extensions[tag]
		if !registered {
			l.undoc(setURI, tag)
			return tag, false
		}
		if alias, ok := l.schema.aliasSet[uri]; ok && alias.set == setURI {
			return uri, true
		}
		l.unreg(setURI, tag, uri)
		return uri, true
	}
	return "", false
}

// RequiredChildren returns the child URIs with lower-bound-1 cardinality
// under containerURI, delegating to the underlying Schema.
func (l *Lookup) RequiredChildren(containerURI string) []string {
	return l.schema.RequiredChildren(containerURI)
}

// Payload returns the payload-type descriptor for URI, or {type:"?"} when
// unknown (spec §4.4).
func (l *Lookup) Payload(uri string) PayloadSpec {
	if spec, ok := l.schema.Payload[uri]; ok {
		return spec
	}
	return PayloadSpec{Type: "?"}
}

// Tag returns the recommended serialized tag for uri. When preferExtension
// is true and uri was registered through AddExtension, the extension tag
// is preferred over the standard tag.
func (l *Lookup) Tag(uri string, preferExtension bool) string {
	if preferExtension {
		for tag, u := range l.extensions {
			if u == uri {
				return tag
			}
		}
	}
	if tag, ok := l.schema.Tag[uri]; ok {
		return tag
	}
	if tag, ok := l.schema.TagInContext.Struct[uri]; ok {
		return tag
	}
	for tag, u := range l.extensions {
		if u == uri {
			return tag
		}
	}
	return uri
}

func (l *Lookup) cacheGet(key string) (Entry, bool) {
	if l.cache == nil {
		return Entry{}, false
	}
	return l.cache.Get(key)
}

func (l *Lookup) cacheSet(key string, e Entry) {
	if l.cache != nil {
		l.cache.Add(key, e)
	}
}

func (l *Lookup) dedupe(key string) bool {
	if _, seen := l.dedup[key]; seen {
		return false
	}
	l.dedup[key] = struct{}{}
	return true
}

func (l *Lookup) undoc(container, tag string) {
	key := "undoc:" + container + ":" + tag
	if l.dedupe(key) {
		l.sink.Warn(diag.AtType(container), fmt.Sprintf("undocumented extension tag %q", tag))
	}
}

func (l *Lookup) unreg(container, tag, uri string) {
	key := "unreg:" + container + ":" + tag
	if l.dedupe(key) {
		l.sink.Warn(diag.AtType(container), fmt.Sprintf("extension tag %q declares unregistered URI %q", tag, uri))
	}
}

func (l *Lookup) aliased(container, tag, standardTag string) {
	key := "aliased:" + container + ":" + tag
	if l.dedupe(key) {
		l.sink.Warn(diag.AtType(container), fmt.Sprintf("extension tag %q used where standard tag %q exists", tag, standardTag))
	}
}

func (l *Lookup) ambig(container, tag string) {
	key := "ambig:" + container + ":" + tag
	if l.dedupe(key) {
		l.sink.Err(diag.AtType(container), fmt.Sprintf("tag %q is ambiguous in this context", tag))
	}
}

func (l *Lookup) prohibited(container, tag string) {
	key := "prohibited:" + container + ":" + tag
	if l.dedupe(key) {
		l.sink.Err(diag.AtType(container), fmt.Sprintf("standard tag %q is not permitted in this context", tag))
	}
}

func (l *Lookup) relocated(container, tag string) {
	key := "relocated:" + container + ":" + tag
	if l.dedupe(key) {
		l.sink.Warn(diag.AtType(container), fmt.Sprintf("standard tag %q used outside its documented placement", tag))
	}
}
