package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSinkDedup(t *testing.T) {
	s := NewSink()
	s.Warn(AtLine(3), "undocumented tag _FOO")
	s.Warn(AtLine(3), "undocumented tag _FOO")
	s.Warn(AtLine(4), "undocumented tag _FOO")

	assert.Len(t, s.All(), 2, "same locator+message dedupes; different line does not")
}

func TestSinkSeverityFilters(t *testing.T) {
	s := NewSink()
	s.Warn(AtType("https://gedcom.io/terms/v7/NOTE"), "deprecated EXID")
	s.Err(AtType("https://gedcom.io/terms/v7/HUSB"), "pointer to substructure")
	s.Fatal(AtLine(1), "empty input")

	assert.True(t, s.HasErrors())
	assert.Len(t, s.Warnings(), 1)
	assert.Len(t, s.Errors(), 2)
	assert.Equal(t, 3, s.Count())
}

func TestPrefixedSink(t *testing.T) {
	s := NewSink()
	p := s.Prefixed("https://gedcom.io/terms/v7/DATE")
	p.Err(AtLine(5), "invalid calendar epoch")

	assert.Equal(t, "https://gedcom.io/terms/v7/DATE: invalid calendar epoch", s.All()[0].Message)
}

func TestNilSinkIsSafe(t *testing.T) {
	var s *Sink
	s.Warn(AtLine(1), "no-op")
	assert.Nil(t, s.All())
	assert.False(t, s.HasErrors())
	assert.Equal(t, 0, s.Count())
}
