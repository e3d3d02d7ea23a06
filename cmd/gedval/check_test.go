package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRegistry = `{
  "substructure": {
    "": {"INDI": {"type": "https://gedcom.io/terms/v7/record-INDI", "cardinality": "{0:M}"}},
    "https://gedcom.io/terms/v7/record-INDI": {
      "NAME": {"type": "https://gedcom.io/terms/v7/INDI-NAME", "cardinality": "{0:M}"}
    }
  },
  "payload": {"https://gedcom.io/terms/v7/INDI-NAME": {"type": "Name"}},
  "set": {},
  "calendar": {},
  "tag": {
    "https://gedcom.io/terms/v7/record-INDI": "INDI",
    "https://gedcom.io/terms/v7/INDI-NAME": "NAME"
  },
  "tagInContext": {}
}`

func TestLoadSchemaReadsRegistryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(testRegistry), 0o644))

	sch, err := loadSchema(path)
	require.NoError(t, err)
	assert.NotNil(t, sch)
}

func TestLoadSchemaMissingFile(t *testing.T) {
	_, err := loadSchema(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
