package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRegistry = `{
  "substructure": {
    "": {
      "INDI": {"type": "https://gedcom.io/terms/v7/record-INDI", "cardinality": "{0:M}"},
      "HEAD": {"type": "https://gedcom.io/terms/v7/HEAD", "cardinality": "{1:1}"}
    },
    "https://gedcom.io/terms/v7/record-INDI": {
      "NAME": {"type": "https://gedcom.io/terms/v7/INDI-NAME", "cardinality": "{0:M}"},
      "SEX": {"type": "https://gedcom.io/terms/v7/SEX", "cardinality": "{0:1}"}
    }
  },
  "payload": {
    "https://gedcom.io/terms/v7/INDI-NAME": {"type": "Name"},
    "https://gedcom.io/terms/v7/SEX": {"type": "Enum", "set": "https://gedcom.io/terms/v7/enumset-SEX"}
  },
  "set": {
    "https://gedcom.io/terms/v7/enumset-SEX": {"M": "https://gedcom.io/terms/v7/enum-M", "F": "https://gedcom.io/terms/v7/enum-F"}
  },
  "calendar": {
    "GREGORIAN": {"type": "https://gedcom.io/terms/v7/cal-GREGORIAN", "months": {"JAN": "https://gedcom.io/terms/v7/month-JAN"}}
  },
  "tag": {
    "https://gedcom.io/terms/v7/record-INDI": "INDI",
    "https://gedcom.io/terms/v7/INDI-NAME": "NAME",
    "https://gedcom.io/terms/v7/SEX": "SEX"
  },
  "tagInContext": {}
}`

func loadTestSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := Load(strings.NewReader(testRegistry))
	require.NoError(t, err)
	return s
}

func TestLoadIndexesRequiredChildren(t *testing.T) {
	s := loadTestSchema(t)
	assert.Contains(t, s.RequiredChildren(""), "https://gedcom.io/terms/v7/HEAD")
	assert.NotContains(t, s.RequiredChildren(""), "https://gedcom.io/terms/v7/record-INDI")
}

func TestMergeOverlaysTags(t *testing.T) {
	s := loadTestSchema(t)
	overlay, err := Load(strings.NewReader(`{"tag": {"https://gedcom.io/terms/v7/SEX": "GENDER"}}`))
	require.NoError(t, err)
	s.Merge(overlay)
	assert.Equal(t, "GENDER", s.Tag["https://gedcom.io/terms/v7/SEX"])
}
