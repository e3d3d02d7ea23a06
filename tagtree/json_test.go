package tagtree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cacack/ged7/diag"
)

func TestToJSONShape(t *testing.T) {
	f := NewForest()
	indi := f.New("INDI", NoHandle)
	f.SetXRef(indi, "@I1@")
	name := f.New("NAME", indi)
	f.SetString(name, "Jane /Doe/")

	out, err := ToJSON(f)
	require.NoError(t, err)

	var roots []map[string]any
	require.NoError(t, json.Unmarshal(out, &roots))
	require.Len(t, roots, 1)
	assert.Equal(t, "INDI", roots[0]["tag"])
	assert.Equal(t, "I1", roots[0]["id"])

	sub := roots[0]["sub"].([]any)[0].(map[string]any)
	assert.Equal(t, "NAME", sub["tag"])
	assert.Equal(t, "Jane /Doe/", sub["text"])
}

func TestToJSONVoidPointerIsExplicitNull(t *testing.T) {
	f := NewForest()
	indi := f.New("INDI", NoHandle)
	fams := f.New("FAMS", indi)
	f.SetNullPointer(fams)

	out, err := ToJSON(f)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"href":null`)
}

func TestFromJSONRoundTrip(t *testing.T) {
	f := NewForest()
	indi := f.New("INDI", NoHandle)
	f.SetXRef(indi, "@I1@")
	fam := f.New("FAM", NoHandle)
	f.SetXRef(fam, "@F1@")
	fams := f.New("FAMS", indi)
	f.SetPointer(fams, fam)

	data, err := ToJSON(f)
	require.NoError(t, err)

	sink := diag.NewSink()
	f2, err := FromJSON(data, sink)
	require.NoError(t, err)
	assert.False(t, sink.HasErrors())
	require.Equal(t, f.Len(), f2.Len())

	indi2, ok := f2.ByXRef("@I1@")
	require.True(t, ok)
	s2 := f2.Get(indi2)
	require.Len(t, s2.Children, 1)
	fams2 := f2.Get(s2.Children[0])
	require.Equal(t, PayloadPointer, fams2.Payload.Kind)
	assert.Equal(t, "FAM", f2.Get(fams2.Payload.Ptr).Tag)
}

func TestFromJSONVoidHref(t *testing.T) {
	data := []byte(`[{"tag":"INDI","sub":[{"tag":"FAMS","href":null}]}]`)
	sink := diag.NewSink()
	f, err := FromJSON(data, sink)
	require.NoError(t, err)
	assert.False(t, sink.HasErrors())

	indi := f.Get(f.TopLevel()[0])
	fams := f.Get(indi.Children[0])
	assert.Equal(t, PayloadNullPointer, fams.Payload.Kind)
}

func TestFromJSONUnresolvedHrefReported(t *testing.T) {
	data := []byte(`[{"tag":"INDI","sub":[{"tag":"FAMS","href":"F404"}]}]`)
	sink := diag.NewSink()
	f, err := FromJSON(data, sink)
	require.NoError(t, err)
	assert.True(t, sink.HasErrors())

	indi := f.Get(f.TopLevel()[0])
	fams := f.Get(indi.Children[0])
	assert.Equal(t, PayloadNullPointer, fams.Payload.Kind)
}
