package typed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cacack/ged7/diag"
	"github.com/cacack/ged7/dialect"
	"github.com/cacack/ged7/schema"
	"github.com/cacack/ged7/tagtree"
)

const testRegistry = `{
  "substructure": {
    "": {
      "INDI": {"type": "https://gedcom.io/terms/v7/record-INDI", "cardinality": "{0:M}"},
      "FAM": {"type": "https://gedcom.io/terms/v7/record-FAM", "cardinality": "{0:M}"},
      "HEAD": {"type": "https://gedcom.io/terms/v7/HEAD", "cardinality": "{1:1}"}
    },
    "https://gedcom.io/terms/v7/record-INDI": {
      "NAME": {"type": "https://gedcom.io/terms/v7/INDI-NAME", "cardinality": "{0:M}"},
      "FAMS": {"type": "https://gedcom.io/terms/v7/FAMS", "cardinality": "{0:M}"},
      "EXID": {"type": "https://gedcom.io/terms/v7/EXID", "cardinality": "{0:M}"}
    },
    "https://gedcom.io/terms/v7/EXID": {
      "EXID-TYPE": {"type": "https://gedcom.io/terms/v7/EXID-TYPE", "cardinality": "{0:1}"}
    },
    "https://gedcom.io/terms/v7/HEAD": {
      "GEDC": {"type": "https://gedcom.io/terms/v7/GEDC", "cardinality": "{1:1}"},
      "NOTE": {"type": "https://gedcom.io/terms/v7/NOTE", "cardinality": "{0:1}"}
    },
    "https://gedcom.io/terms/v7/GEDC": {
      "VERS": {"type": "https://gedcom.io/terms/v7/GEDC-VERS", "cardinality": "{1:1}"}
    }
  },
  "payload": {
    "https://gedcom.io/terms/v7/INDI-NAME": {"type": "Name"},
    "https://gedcom.io/terms/v7/EXID-TYPE": {"type": "?"}
  },
  "set": {},
  "calendar": {},
  "tag": {
    "https://gedcom.io/terms/v7/record-INDI": "INDI",
    "https://gedcom.io/terms/v7/record-FAM": "FAM",
    "https://gedcom.io/terms/v7/INDI-NAME": "NAME",
    "https://gedcom.io/terms/v7/FAMS": "FAMS",
    "https://gedcom.io/terms/v7/EXID": "EXID",
    "https://gedcom.io/terms/v7/EXID-TYPE": "EXID-TYPE",
    "https://gedcom.io/terms/v7/HEAD": "HEAD",
    "https://gedcom.io/terms/v7/GEDC": "GEDC",
    "https://gedcom.io/terms/v7/GEDC-VERS": "VERS",
    "https://gedcom.io/terms/v7/NOTE": "NOTE"
  },
  "tagInContext": {}
}`

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Load(strings.NewReader(testRegistry))
	require.NoError(t, err)
	return s
}

func TestNewRecordAndNewChild(t *testing.T) {
	sink := diag.NewSink()
	l := schema.NewLookup(testSchema(t), sink)
	d := NewDataset(l, sink)

	indi := d.NewRecord("INDI")
	assert.Equal(t, "https://gedcom.io/terms/v7/record-INDI", d.Get(indi).Type)

	name := d.NewChild(indi, "NAME")
	assert.Equal(t, "https://gedcom.io/terms/v7/INDI-NAME", d.Get(name).Type)
	assert.Contains(t, d.Get(indi).ChildrenOf("https://gedcom.io/terms/v7/INDI-NAME"), name)
}

func TestFromForestConvertsAndResolvesPointers(t *testing.T) {
	src := "0 @I1@ INDI\n1 FAMS @F1@\n0 @F1@ FAM\n0 TRLR\n"
	psink := diag.NewSink()
	f, err := tagtree.ParseString(src, dialect.GEDCOM7(), psink)
	require.NoError(t, err)
	require.False(t, psink.HasErrors())

	sink := diag.NewSink()
	l := schema.NewLookup(testSchema(t), sink)
	d := FromForest(f, l, sink)

	indiH, ok := d.ByXRef("I1")
	require.True(t, ok)
	indi := d.Get(indiH)
	require.Len(t, indi.ChildrenOf("https://gedcom.io/terms/v7/FAMS"), 1)

	famsH := indi.ChildrenOf("https://gedcom.io/terms/v7/FAMS")[0]
	fams := d.Get(famsH)
	require.Equal(t, PayloadPointer, fams.Payload.Kind)

	target := d.Get(fams.Payload.Ptr)
	assert.Equal(t, "https://gedcom.io/terms/v7/record-FAM", target.Type)
}

func TestValidateMissingRequiredChild(t *testing.T) {
	sink := diag.NewSink()
	l := schema.NewLookup(testSchema(t), sink)
	d := NewDataset(l, sink)

	head := d.NewRecord("HEAD")
	note := d.NewChild(head, "NOTE")
	d.SetString(note, "a note", nil)

	errs := d.Validate(head)
	assert.Equal(t, 1, errs)
	assert.True(t, sink.HasErrors())
}

func TestValidateEXIDWithoutTypeWarns(t *testing.T) {
	sink := diag.NewSink()
	l := schema.NewLookup(testSchema(t), sink)
	d := NewDataset(l, sink)

	indi := d.NewRecord("INDI")
	exid := d.NewChild(indi, "EXID")
	d.SetString(exid, "1234", nil)

	d.Validate(indi)
	assert.NotEmpty(t, sink.Warnings())
}

func TestFindOrCreateReusesMatchedAncestor(t *testing.T) {
	sink := diag.NewSink()
	l := schema.NewLookup(testSchema(t), sink)
	d := NewDataset(l, sink)

	indi := d.NewRecord("INDI")
	first := d.FindOrCreate(indi, "NAME", "Jane /Doe/")
	second := d.FindOrCreate(indi, "NAME", "Jane /Doe/")
	assert.Equal(t, first, second)

	found, ok := d.Find(indi, "NAME", "Jane /Doe/")
	assert.True(t, ok)
	assert.Equal(t, first, found)

	_, ok = d.Find(indi, "NAME", "Nobody")
	assert.False(t, ok)
}

func TestToForestRoundTrip(t *testing.T) {
	sink := diag.NewSink()
	l := schema.NewLookup(testSchema(t), sink)
	d := NewDataset(l, sink)

	indi := d.NewRecord("INDI")
	d.SetXRef(indi, "I1")
	name := d.NewChild(indi, "NAME")
	d.SetString(name, "Jane /Doe/", nil)

	f := d.ToForest()
	out, err := tagtree.Serialize(f, dialect.GEDCOM7())
	require.NoError(t, err)
	assert.Contains(t, out, "@I1@ INDI")
	assert.Contains(t, out, "NAME Jane /Doe/")
}

func TestToForestEmitsHeadSchmaForExtensionTags(t *testing.T) {
	sink := diag.NewSink()
	l := schema.NewLookup(testSchema(t), sink)
	d := NewDataset(l, sink)

	d.NewRecord("HEAD")
	indi := d.NewRecord("INDI")
	thing := d.NewChild(indi, "https://example.com/ns/Thing")
	d.SetString(thing, "custom value", nil)

	f := d.ToForest()
	var headH tagtree.Handle
	for _, h := range f.TopLevel() {
		if f.Get(h).Tag == "HEAD" {
			headH = h
		}
	}
	require.NotEqual(t, tagtree.NoHandle, headH)

	hs := f.Get(headH)
	require.Len(t, hs.Children, 1)
	schma := f.Get(hs.Children[0])
	assert.Equal(t, "SCHMA", schma.Tag)
	require.Len(t, schma.Children, 1)

	tagLine := f.Get(schma.Children[0])
	assert.Equal(t, "TAG", tagLine.Tag)
	assert.Contains(t, tagLine.Payload.Str, "https://example.com/ns/Thing")

	out, err := tagtree.Serialize(f, dialect.GEDCOM7())
	require.NoError(t, err)
	assert.Contains(t, out, "SCHMA")
}

func TestJSONRoundTrip(t *testing.T) {
	sink := diag.NewSink()
	l := schema.NewLookup(testSchema(t), sink)
	d := NewDataset(l, sink)

	indi := d.NewRecord("INDI")
	d.SetXRef(indi, "I1")
	name := d.NewChild(indi, "NAME")
	d.SetString(name, "Jane /Doe/", nil)

	data, err := d.ToJSON()
	require.NoError(t, err)

	sink2 := diag.NewSink()
	l2 := schema.NewLookup(testSchema(t), sink2)
	d2, err := FromJSON(data, l2, sink2)
	require.NoError(t, err)
	assert.False(t, sink2.HasErrors())

	indi2, ok := d2.ByXRef("I1")
	require.True(t, ok)
	require.Len(t, d2.Get(indi2).ChildrenOf("https://gedcom.io/terms/v7/INDI-NAME"), 1)
}
