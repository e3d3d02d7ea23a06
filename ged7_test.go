package ged7

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRegistry = `{
  "substructure": {
    "": {
      "INDI": {"type": "https://gedcom.io/terms/v7/record-INDI", "cardinality": "{0:M}"}
    },
    "https://gedcom.io/terms/v7/record-INDI": {
      "NAME": {"type": "https://gedcom.io/terms/v7/INDI-NAME", "cardinality": "{0:M}"}
    }
  },
  "payload": {
    "https://gedcom.io/terms/v7/INDI-NAME": {"type": "Name"}
  },
  "set": {},
  "calendar": {},
  "tag": {
    "https://gedcom.io/terms/v7/record-INDI": "INDI",
    "https://gedcom.io/terms/v7/INDI-NAME": "NAME"
  },
  "tagInContext": {}
}`

func TestDecodeEncodeRoundTrip(t *testing.T) {
	sch, err := LoadSchema(strings.NewReader(testRegistry))
	require.NoError(t, err)

	src := "0 @I1@ INDI\n1 NAME Jane /Doe/\n0 TRLR\n"
	d, err := Decode(strings.NewReader(src), sch)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, Encode(&buf, d))
	assert.Contains(t, buf.String(), "@I1@ INDI")
	assert.Contains(t, buf.String(), "NAME Jane /Doe/")
}

func TestSelectFindsRecordsByURI(t *testing.T) {
	sch, err := LoadSchema(strings.NewReader(testRegistry))
	require.NoError(t, err)

	src := "0 @I1@ INDI\n1 NAME Jane /Doe/\n0 TRLR\n"
	d, err := Decode(strings.NewReader(src), sch)
	require.NoError(t, err)

	matches := Select(d, ".https://gedcom.io/terms/v7/record-INDI")
	require.Len(t, matches, 1)
}
