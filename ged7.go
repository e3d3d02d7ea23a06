// Package ged7 provides a unified API for processing GEDCOM genealogical
// data files.
//
// This package is the recommended entry point for most users. It provides
// simple, high-level functions for common operations while re-exporting the
// most frequently used types for single-import convenience.
//
// # Quick Start
//
// Parse a GEDCOM file against a schema registry:
//
//	registry, _ := os.Open("g7validation.json")
//	sch, _ := schema.Load(registry)
//	f, _ := os.Open("family.ged")
//	dataset, err := ged7.Decode(f, sch)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Write a GEDCOM dataset:
//
//	out, _ := os.Create("output.ged")
//	err := ged7.Encode(out, dataset)
//
// Validate a dataset:
//
//	errCount := ged7.ValidateAll(dataset)
//
// Run a dot-path selector query (typed-layer keys are type URIs, so a
// schema lookup is normally used to resolve a tag to its path segment
// first):
//
//	matches := ged7.Select(dataset, "."+lookup.Substructure("", "INDI").URI)
//
// # Power Users
//
// For advanced use cases, import the underlying packages directly:
//
//   - github.com/cacack/ged7/tagtree - the tag-forest layer, dialect-parameterized
//   - github.com/cacack/ged7/typed - the typed dataset layer, construction paths and JSON codec
//   - github.com/cacack/ged7/schema - the structure registry and five-way tag resolution
//   - github.com/cacack/ged7/datatype - the §4.3 payload grammars
//   - github.com/cacack/ged7/selector - the dot-path query language
//   - github.com/cacack/ged7/diag - diagnostics severities and sinks
package ged7

import (
	"io"

	"github.com/cacack/ged7/datatype"
	"github.com/cacack/ged7/diag"
	"github.com/cacack/ged7/dialect"
	"github.com/cacack/ged7/schema"
	"github.com/cacack/ged7/selector"
	"github.com/cacack/ged7/tagtree"
	"github.com/cacack/ged7/typed"
)

// Type re-exports for single-import convenience. These allow users to work
// with the core data model without importing multiple packages.
type (
	// Dataset is a typed GEDCOM dataset (component E): every structure's
	// tag is resolved to a registry URI and its payload parsed into one of
	// the §4.3 datatype classes.
	Dataset = typed.Dataset

	// Handle indexes a structure within a Dataset.
	Handle = typed.Handle

	// Schema is the parsed, static structure registry (component D).
	Schema = schema.Schema

	// Lookup is the mutable, per-dataset wrapper around a Schema.
	Lookup = schema.Lookup

	// Config is a dialect configuration (component A): which line-grammar
	// variant and payload-length policy to parse/serialize under.
	Config = dialect.Config

	// Sink collects diagnostics emitted while parsing, resolving, or
	// validating.
	Sink = diag.Sink

	// DecodeResult couples a decoded Dataset with every diagnostic
	// collected while building it (the lenient multi-error decode mode).
	DecodeResult = typed.DecodeResult
)

// NoHandle re-exports typed.NoHandle for single-import convenience.
const NoHandle = typed.NoHandle

// GEDCOM7 returns the GEDCOM 7.0 dialect configuration.
func GEDCOM7() *Config { return dialect.GEDCOM7() }

// GEDCOM55 returns the GEDCOM 5.5.1 dialect configuration.
func GEDCOM55() *Config { return dialect.GEDCOM55() }

// LoadSchema parses the structure registry described in spec §4.4 from r.
// This is the simplest way to load a schema using default options; for a
// local YAML overlay layered on top, use schema.LoadYAML and Schema.Merge
// directly.
func LoadSchema(r io.Reader) (*Schema, error) {
	return schema.Load(r)
}

// Decode parses a GEDCOM file from r against sch using the GEDCOM 7.0
// dialect and returns the resulting Dataset. It fails only when the tag
// layer itself could not be parsed at all; use DecodeWithDiagnostics to
// inspect warnings and non-fatal errors.
//
// For a different dialect or custom options, use typed.Decode directly.
func Decode(r io.Reader, sch *Schema) (*Dataset, error) {
	return typed.Decode(r, dialect.GEDCOM7(), sch)
}

// DecodeWithDiagnostics parses a GEDCOM file the same way as Decode but
// returns every diagnostic collected along the way instead of discarding
// it.
func DecodeWithDiagnostics(r io.Reader, sch *Schema) (*DecodeResult, error) {
	return typed.DecodeWithDiagnostics(r, dialect.GEDCOM7(), sch)
}

// Encode serializes a Dataset to GEDC text using the GEDCOM 7.0 dialect.
//
// For a different dialect, convert the dataset with Dataset.ToForest and
// call tagtree.Serialize directly.
func Encode(w io.Writer, d *Dataset) error {
	return EncodeDialect(w, d, dialect.GEDCOM7())
}

// EncodeDialect serializes a Dataset to GEDC text under cfg's grammar.
func EncodeDialect(w io.Writer, d *Dataset, cfg *Config) error {
	f := d.ToForest()
	out, err := tagtree.Serialize(f, cfg)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// Validate walks h and its descendants against the schema's cardinality
// rules and returns the number of errors found.
func Validate(d *Dataset, h Handle) int {
	return d.Validate(h)
}

// ValidateAll validates every top-level structure in d.
func ValidateAll(d *Dataset) int {
	return d.ValidateAll()
}

// Select runs a dot-path selector query against d, rooted at its top-level
// structures (spec §4.6).
func Select(d *Dataset, path string) []Handle {
	nodes := selector.Select(d.Roots(), path)
	out := make([]Handle, len(nodes))
	for i, n := range nodes {
		out[i] = d.HandleOf(n)
	}
	return out
}

// Age parses the GEDCOM age datatype; see datatype.ParseAge for diagnostics.
func Age(s string, loc diag.Locator, sink diag.Sinker) datatype.Age {
	return datatype.ParseAge(s, loc, sink)
}
