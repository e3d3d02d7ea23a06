package typed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cacack/ged7/dialect"
)

func TestDecodeBuildsDataset(t *testing.T) {
	src := "0 @I1@ INDI\n1 NAME Jane /Doe/\n0 TRLR\n"
	d, err := Decode(strings.NewReader(src), dialect.GEDCOM7(), testSchema(t))
	require.NoError(t, err)

	indi, ok := d.ByXRef("I1")
	require.True(t, ok)
	assert.Len(t, d.Get(indi).ChildrenOf("https://gedcom.io/terms/v7/INDI-NAME"), 1)
}

func TestDecodeWithDiagnosticsCollectsWarnings(t *testing.T) {
	src := "0 @I1@ INDI\n1 _CUSTOM something\n0 TRLR\n"
	result, err := DecodeWithDiagnostics(strings.NewReader(src), dialect.GEDCOM7(), testSchema(t))
	require.NoError(t, err)
	require.NotNil(t, result.Dataset)
	assert.NotEmpty(t, result.Sink.Warnings())
}

func TestDecodeFailsOnEmptyInput(t *testing.T) {
	_, err := Decode(strings.NewReader(""), dialect.GEDCOM7(), testSchema(t))
	assert.Error(t, err)
}
