// Package schema loads the FamilySearch GEDCOM-7 structure registry and
// exposes the five-way tag/URI resolution the typed layer needs (spec
// §4.4, component D). Schema is the static, parsed-once registry; Lookup
// (lookup.go) is the mutable, per-dataset wrapper around it.
package schema

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Cardinality is a GEDCOM structure-count constraint: "{0:1}", "{1:1}",
// "{0:M}", "{1:M}".
type Cardinality struct {
	Min int // 0 or 1
	Max int // 1, or -1 for "M" (unbounded)
}

// Required reports whether the lower bound forces at least one instance.
func (c Cardinality) Required() bool { return c.Min >= 1 }

// Singular reports whether the upper bound forbids more than one instance.
func (c Cardinality) Singular() bool { return c.Max == 1 }

// SubstructureSpec is one entry of Schema.Substructure[container][tag].
type SubstructureSpec struct {
	Type        string `json:"type" yaml:"type"`
	Cardinality string `json:"cardinality" yaml:"cardinality"`
}

func (s SubstructureSpec) ParsedCardinality() Cardinality {
	return parseCardinality(s.Cardinality)
}

func parseCardinality(s string) Cardinality {
	switch s {
	case "{1:1}":
		return Cardinality{Min: 1, Max: 1}
	case "{1:M}":
		return Cardinality{Min: 1, Max: -1}
	case "{0:M}":
		return Cardinality{Min: 0, Max: -1}
	default: // "{0:1}" and anything unrecognized default to optional-singular
		return Cardinality{Min: 0, Max: 1}
	}
}

// PayloadSpec describes the payload datatype expected for a structure URI.
type PayloadSpec struct {
	Type string `json:"type" yaml:"type"` // datatype class name, e.g. "Integer", "Enum", "Date#period"
	Set  string `json:"set,omitempty" yaml:"set,omitempty"`
	To   string `json:"to,omitempty" yaml:"to,omitempty"` // pointer target type constraint
}

// CalendarSpec describes one calendar's month vocabulary and epoch list.
type CalendarSpec struct {
	Type   string            `json:"type" yaml:"type"`
	Months map[string]string `json:"months,omitempty" yaml:"months,omitempty"`
	Epochs []string          `json:"epochs,omitempty" yaml:"epochs,omitempty"`
}

// TagInContext holds the preferred serialization tag for a URI in each of
// the four resolution domains (spec §4.4).
type TagInContext struct {
	Struct map[string]string `json:"struct,omitempty" yaml:"struct,omitempty"`
	Enum   map[string]string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Cal    map[string]string `json:"cal,omitempty" yaml:"cal,omitempty"`
	Month  map[string]string `json:"month,omitempty" yaml:"month,omitempty"`
}

// Schema is the parsed, static registry (spec §4.4): "a parsed schema
// object with maps".
type Schema struct {
	Substructure map[string]map[string]SubstructureSpec `json:"substructure" yaml:"substructure"`
	Payload      map[string]PayloadSpec                 `json:"payload" yaml:"payload"`
	Set          map[string]map[string]string           `json:"set" yaml:"set"`
	Calendar     map[string]CalendarSpec                `json:"calendar" yaml:"calendar"`
	Tag          map[string]string                      `json:"tag" yaml:"tag"`
	TagInContext TagInContext                            `json:"tagInContext" yaml:"tagInContext"`

	// reqSubstr[containerURI] lists child URIs whose cardinality lower
	// bound is 1, memoized at load time (spec §4.4).
	reqSubstr map[string][]string

	// aliasSubstructure maps a substructure's value URI back to its
	// defining (container, tag, spec) so a caller that only has a URI can
	// still recover the tag and cardinality.
	aliasSubstructure map[string]aliasEntry
	aliasCalendar     map[string]string // calendar type URI -> tag
	aliasSet          map[string]setAliasEntry
}

type aliasEntry struct {
	container string
	tag       string
	spec      SubstructureSpec
}

type setAliasEntry struct {
	set string
	tag string
}

// Load parses the JSON-encoded registry described in spec §4.4.
func Load(r io.Reader) (*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("schema: read: %w", err)
	}
	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("schema: parse JSON: %w", err)
	}
	s.index()
	return &s, nil
}

// LoadYAML parses a YAML overlay with the same shape as the JSON registry,
// for local schema extensions a caller wants to ship alongside the
// authoritative registry (supplemented feature; spec is silent on the
// overlay's encoding — see DESIGN.md).
func LoadYAML(r io.Reader) (*Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("schema: read: %w", err)
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("schema: parse YAML: %w", err)
	}
	s.index()
	return &s, nil
}

// Merge overlays other's entries on top of s, with other taking priority;
// used to layer a LoadYAML overlay on top of the authoritative registry.
// TagInContext entries of other are not merged.
func (s *Schema) Merge(other *Schema) {
	for container, tags := range other.Substructure {
		if s.Substructure == nil {
			s.Substructure = make(map[string]map[string]SubstructureSpec)
		}
		if s.Substructure[container] == nil {
			s.Substructure[container] = make(map[string]SubstructureSpec)
		}
		for tag, spec := range tags {
			s.Substructure[container][tag] = spec
		}
	}
	for uri, spec := range other.Payload {
		if s.Payload == nil {
			s.Payload = make(map[string]PayloadSpec)
		}
		s.Payload[uri] = spec
	}
	for setURI, vals := range other.Set {
		if s.Set == nil {
			s.Set = make(map[string]map[string]string)
		}
		if s.Set[setURI] == nil {
			s.Set[setURI] = make(map[string]string)
		}
		for tag, uri := range vals {
			s.Set[setURI][tag] = uri
		}
	}
	for tag, spec := range other.Calendar {
		if s.Calendar == nil {
			s.Calendar = make(map[string]CalendarSpec)
		}
		s.Calendar[tag] = spec
	}
	for uri, tag := range other.Tag {
		if s.Tag == nil {
			s.Tag = make(map[string]string)
		}
		s.Tag[uri] = tag
	}
	s.index()
}

// index (re)builds the derived reqSubstr table and alias side-tables
// (spec §4.4: "a derived reqSubstr[URI] is memoized..." and "For each map
// the constructor builds an alias side-table...").
func (s *Schema) index() {
	s.reqSubstr = make(map[string][]string)
	s.aliasSubstructure = make(map[string]aliasEntry)
	for container, tags := range s.Substructure {
		for tag, spec := range tags {
			s.aliasSubstructure[spec.Type] = aliasEntry{container: container, tag: tag, spec: spec}
			if spec.ParsedCardinality().Required() {
				s.reqSubstr[container] = append(s.reqSubstr[container], spec.Type)
			}
		}
	}

	s.aliasCalendar = make(map[string]string)
	for tag, spec := range s.Calendar {
		s.aliasCalendar[spec.Type] = tag
	}

	s.aliasSet = make(map[string]setAliasEntry)
	for setURI, vals := range s.Set {
		for tag, uri := range vals {
			s.aliasSet[uri] = setAliasEntry{set: setURI, tag: tag}
		}
	}
}

// RequiredChildren returns the child URIs with lower-bound-1 cardinality
// under containerURI.
func (s *Schema) RequiredChildren(containerURI string) []string {
	return s.reqSubstr[containerURI]
}
