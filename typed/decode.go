package typed

import (
	"io"

	"github.com/cacack/ged7/diag"
	"github.com/cacack/ged7/dialect"
	"github.com/cacack/ged7/schema"
	"github.com/cacack/ged7/tagtree"
)

// DecodeResult couples a decoded Dataset with every diagnostic collected
// while parsing and converting it, mirroring the teacher's
// decoder.DecodeResult (decoder/diagnostics_decoder_test.go) for the
// lenient multi-error decode mode described in spec §4.5 (added).
type DecodeResult struct {
	Dataset *Dataset
	Sink    *diag.Sink
}

// Decode parses GEDC text from r against sch using cfg's grammar and
// returns the resulting Dataset. It fails only when the tag layer itself
// could not be parsed at all (empty input, an I/O error, or a read that
// never produced a usable line) — ordinary diagnostics are recorded on the
// dataset's sink, not returned as an error; use DecodeWithDiagnostics to
// inspect them.
func Decode(r io.Reader, cfg *dialect.Config, sch *schema.Schema) (*Dataset, error) {
	sink := diag.NewSink()
	lookup := schema.NewLookup(sch, sink)
	f, err := tagtree.Parse(r, cfg, sink)
	if err != nil {
		return nil, err
	}
	return FromForest(f, lookup, sink), nil
}

// DecodeWithDiagnostics parses r the same way as Decode but returns every
// diagnostic collected along the way instead of discarding it, for callers
// that want to report warnings/errors alongside a (possibly still usable)
// Dataset.
func DecodeWithDiagnostics(r io.Reader, cfg *dialect.Config, sch *schema.Schema) (*DecodeResult, error) {
	sink := diag.NewSink()
	lookup := schema.NewLookup(sch, sink)
	f, err := tagtree.Parse(r, cfg, sink)
	if err != nil {
		return nil, err
	}
	d := FromForest(f, lookup, sink)
	return &DecodeResult{Dataset: d, Sink: sink}, nil
}

// DecodeWithLookup parses r like Decode but takes a caller-constructed
// Lookup, letting callers set Lookup.Trace (or a pre-populated extension
// table) before any tag is resolved.
func DecodeWithLookup(r io.Reader, cfg *dialect.Config, lookup *schema.Lookup, sink *diag.Sink) (*Dataset, error) {
	f, err := tagtree.Parse(r, cfg, sink)
	if err != nil {
		return nil, err
	}
	return FromForest(f, lookup, sink), nil
}
