package datatype

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cacack/ged7/diag"
)

type fakeResolver struct {
	months map[string]map[string]string
}

func (r *fakeResolver) Month(cal, tag string) (string, bool) {
	m, ok := r.months[cal]
	if !ok {
		return "", false
	}
	uri, ok := m[tag]
	return uri, ok
}

func (r *fakeResolver) KnownCalendar(cal string) bool {
	_, ok := r.months[cal]
	return ok
}

func (r *fakeResolver) Epochs(cal string) []string {
	if cal == "JULIAN" {
		return []string{"BCE"}
	}
	return nil
}

func gregorianResolver() *fakeResolver {
	return &fakeResolver{months: map[string]map[string]string{
		"GREGORIAN": {"JAN": "https://gedcom.io/terms/v7/month-JAN"},
	}}
}

func TestParseDateBareYear(t *testing.T) {
	sink := diag.NewSink()
	d := ParseDate("1984", gregorianResolver(), diag.AtLine(1), sink)
	assert.False(t, sink.HasErrors())
	assert.Equal(t, 1984, d.Year)
	assert.Equal(t, "GREGORIAN", d.Calendar)
	assert.False(t, d.HasMonth)
}

func TestParseDateWithMonthAndDay(t *testing.T) {
	sink := diag.NewSink()
	d := ParseDate("2 JAN 1984", gregorianResolver(), diag.AtLine(1), sink)
	assert.False(t, sink.HasErrors())
	assert.Equal(t, 2, d.Day)
	assert.Equal(t, "https://gedcom.io/terms/v7/month-JAN", d.Month)
	assert.Equal(t, 1984, d.Year)
}

func TestParseDateUnknownMonthReported(t *testing.T) {
	sink := diag.NewSink()
	d := ParseDate("FOO 1984", gregorianResolver(), diag.AtLine(1), sink)
	assert.True(t, sink.HasErrors())
	assert.Equal(t, "FOO", d.Month)
}

func TestParseDateEpoch(t *testing.T) {
	sink := diag.NewSink()
	d := ParseDate("100(BCE)", gregorianResolver(), diag.AtLine(1), sink)
	assert.Equal(t, 100, d.Year)
	assert.Equal(t, "BCE", d.Epoch)
}

func TestParseDateValueForms(t *testing.T) {
	sink := diag.NewSink()
	r := gregorianResolver()

	abt := ParseDateValue("ABT 1984", r, false, diag.AtLine(1), sink)
	assert.Equal(t, DVAbout, abt.Kind)

	bet := ParseDateValue("BET 1980 AND 1990", r, false, diag.AtLine(1), sink)
	assert.Equal(t, DVRange, bet.Kind)
	assert.Equal(t, 1980, bet.From.Year)
	assert.Equal(t, 1990, bet.To.Year)

	from := ParseDateValue("FROM 1980 TO 1990", r, false, diag.AtLine(1), sink)
	assert.Equal(t, DVPeriod, from.Kind)
	assert.Equal(t, "FROM 1980 TO 1990", from.String())

	bare := ParseDateValue("1984", r, false, diag.AtLine(1), sink)
	assert.Equal(t, DVDate, bare.Kind)

	empty := ParseDateValue("", r, false, diag.AtLine(1), sink)
	assert.True(t, empty.Empty())
}

func TestParseDateValuePeriodConstraintDowngrades(t *testing.T) {
	sink := diag.NewSink()
	r := gregorianResolver()

	dv := ParseDateValue("ABT 1984", r, true, diag.AtLine(1), sink)
	assert.True(t, sink.HasErrors())
	assert.Equal(t, DVEmpty, dv.Kind)

	sink2 := diag.NewSink()
	period := ParseDateValue("FROM 1980 TO 1990", r, true, diag.AtLine(1), sink2)
	assert.False(t, sink2.HasErrors())
	assert.Equal(t, DVPeriod, period.Kind)
}
