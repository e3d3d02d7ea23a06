package datatype

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cacack/ged7/diag"
)

func TestNonNegativeInteger(t *testing.T) {
	sink := diag.NewSink()
	assert.Equal(t, 42, NonNegativeInteger("42", diag.AtLine(1), sink))
	assert.False(t, sink.HasErrors())

	assert.Equal(t, 0, NonNegativeInteger("-3", diag.AtLine(1), sink))
	assert.True(t, sink.HasErrors())
}

func TestName(t *testing.T) {
	sink := diag.NewSink()
	assert.Equal(t, "Jane /Doe/", Name("Jane /Doe/", diag.AtLine(1), sink))
	assert.False(t, sink.HasErrors())

	got := Name("Jane /Doe/Smith/", diag.AtLine(1), sink)
	assert.Contains(t, got, "⁄")
	assert.True(t, sink.HasErrors())
}

func TestLanguage(t *testing.T) {
	sink := diag.NewSink()
	assert.Equal(t, "en-US", Language("en-US", diag.AtLine(1), sink))
	assert.False(t, sink.HasErrors())

	assert.Equal(t, "und", Language("!!!not-a-tag!!!", diag.AtLine(1), sink))
	assert.True(t, sink.HasErrors())
}

func TestMediaType(t *testing.T) {
	sink := diag.NewSink()
	assert.Equal(t, "text/plain", MediaType("text/plain", diag.AtLine(1), sink))
	assert.False(t, sink.HasErrors())

	assert.Equal(t, "application/octet-stream", MediaType("???", diag.AtLine(1), sink))
	assert.True(t, sink.HasErrors())
}

func TestYesOrEmpty(t *testing.T) {
	sink := diag.NewSink()
	assert.Equal(t, "Y", YesOrEmpty("Y", diag.AtLine(1), sink))
	assert.Equal(t, "", YesOrEmpty("", diag.AtLine(1), sink))
	assert.False(t, sink.HasErrors())

	YesOrEmpty("N", diag.AtLine(1), sink)
	assert.True(t, sink.HasErrors())
}

func TestParseAge(t *testing.T) {
	sink := diag.NewSink()
	a := ParseAge("26y 3m", diag.AtLine(1), sink)
	assert.False(t, sink.HasErrors())
	assert.Equal(t, 26, a.Years)
	assert.Equal(t, 3, a.Months)
	assert.Equal(t, "26y 3m", a.String())

	a2 := ParseAge("<1y", diag.AtLine(1), sink)
	assert.Equal(t, byte('<'), a2.Modifier)
	assert.Equal(t, "<1y", a2.String())

	sink2 := diag.NewSink()
	bad := ParseAge("garbage", diag.AtLine(1), sink2)
	assert.True(t, sink2.HasErrors())
	assert.Equal(t, ">0y", bad.String())
}

func TestParseTime(t *testing.T) {
	sink := diag.NewSink()
	tm := ParseTime("13:30:05.123Z", diag.AtLine(1), sink)
	assert.False(t, sink.HasErrors())
	assert.Equal(t, 13, tm.Hour)
	assert.Equal(t, "13:30:05.123Z", tm.String())

	sink2 := diag.NewSink()
	ParseTime("25:00", diag.AtLine(1), sink2)
	assert.True(t, sink2.HasErrors())
}

func TestList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, List("a, b,c"))
	assert.Nil(t, List(""))
	assert.Equal(t, "a, b", JoinList([]string{"a", "b"}))
}
