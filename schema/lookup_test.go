package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cacack/ged7/diag"
)

func TestLookupSubstructureStandard(t *testing.T) {
	s := loadTestSchema(t)
	sink := diag.NewSink()
	l := NewLookup(s, sink)

	e := l.Substructure("https://gedcom.io/terms/v7/record-INDI", "NAME")
	assert.Equal(t, "https://gedcom.io/terms/v7/INDI-NAME", e.URI)
	assert.Equal(t, ResStandard, e.Resolution)
	assert.False(t, sink.HasErrors())
}

func TestLookupSubstructureUndocumentedExtension(t *testing.T) {
	s := loadTestSchema(t)
	sink := diag.NewSink()
	l := NewLookup(s, sink)

	e := l.Substructure("https://gedcom.io/terms/v7/record-INDI", "_CUSTOM")
	assert.Equal(t, ResUndocumented, e.Resolution)
	require.Len(t, sink.Warnings(), 1)
}

func TestLookupSubstructureRegisteredExtension(t *testing.T) {
	s := loadTestSchema(t)
	sink := diag.NewSink()
	l := NewLookup(s, sink)
	l.AddExtension("_FOO", "https://example.com/ns/FOO")

	e := l.Substructure("https://gedcom.io/terms/v7/record-INDI", "_FOO")
	assert.Equal(t, ResUnregisteredDocumented, e.Resolution)
	assert.Equal(t, "https://example.com/ns/FOO", e.URI)
}

func TestAddExtensionReportsAmbiguousCollision(t *testing.T) {
	s := loadTestSchema(t)
	sink := diag.NewSink()
	l := NewLookup(s, sink)

	l.AddExtension("_FOO", "https://example.com/ns/FOO")
	assert.False(t, sink.HasErrors())

	l.AddExtension("_FOO", "https://example.com/ns/BAR")
	assert.True(t, sink.HasErrors())
	assert.Equal(t, "https://example.com/ns/BAR", l.extensions["_FOO"])
}

func TestLookupSubstructureProhibited(t *testing.T) {
	s := loadTestSchema(t)
	sink := diag.NewSink()
	l := NewLookup(s, sink)

	l.Substructure("", "NAME")
	assert.True(t, sink.HasErrors())
}

func TestLookupEnumval(t *testing.T) {
	s := loadTestSchema(t)
	sink := diag.NewSink()
	l := NewLookup(s, sink)

	uri, ok := l.Enumval("https://gedcom.io/terms/v7/enumset-SEX", "M")
	assert.True(t, ok)
	assert.Equal(t, "https://gedcom.io/terms/v7/enum-M", uri)

	_, ok = l.Enumval("https://gedcom.io/terms/v7/enumset-SEX", "X")
	assert.False(t, ok)
	assert.False(t, sink.HasErrors())
}

func TestLookupMonth(t *testing.T) {
	s := loadTestSchema(t)
	sink := diag.NewSink()
	l := NewLookup(s, sink)

	uri, ok := l.Month("GREGORIAN", "JAN")
	assert.True(t, ok)
	assert.Equal(t, "https://gedcom.io/terms/v7/month-JAN", uri)
	assert.True(t, l.KnownCalendar("GREGORIAN"))
}

func TestLookupTagPrefersExtensionWhenRequested(t *testing.T) {
	s := loadTestSchema(t)
	sink := diag.NewSink()
	l := NewLookup(s, sink)
	l.AddExtension("_SEX2", "https://gedcom.io/terms/v7/SEX")

	assert.Equal(t, "SEX", l.Tag("https://gedcom.io/terms/v7/SEX", false))
	assert.Equal(t, "_SEX2", l.Tag("https://gedcom.io/terms/v7/SEX", true))
}

func TestSchemaPrepMintsUniqueExtensionTags(t *testing.T) {
	s := loadTestSchema(t)
	sink := diag.NewSink()
	l := NewLookup(s, sink)

	tag1 := l.SchemaPrep("https://example.com/ns/Thing", "struct", "")
	tag2 := l.SchemaPrep("https://example.com/ns/Thing2", "struct", "")
	assert.NotEqual(t, tag1, tag2)

	again := l.SchemaPrep("https://example.com/ns/Thing", "struct", "")
	assert.Equal(t, tag1, again)
}
