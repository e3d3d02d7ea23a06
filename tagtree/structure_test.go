package tagtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForestNewTracksTopLevelAndChildren(t *testing.T) {
	f := NewForest()
	head := f.New("HEAD", NoHandle)
	gedc := f.New("GEDC", head)

	assert.Equal(t, []Handle{head}, f.TopLevel())
	assert.Equal(t, []Handle{gedc}, f.Get(head).Children)
	assert.Equal(t, head, f.Get(gedc).Parent)
}

func TestForestSetXRefIndexesByXRef(t *testing.T) {
	f := NewForest()
	indi := f.New("INDI", NoHandle)
	f.SetXRef(indi, "@I1@")

	h, ok := f.ByXRef("@I1@")
	require.True(t, ok)
	assert.Equal(t, indi, h)
	assert.True(t, f.Get(indi).HasXRef())
}

func TestForestSetPointerRecordsBackEdge(t *testing.T) {
	f := NewForest()
	fam := f.New("FAM", NoHandle)
	indi := f.New("INDI", NoHandle)
	fams := f.New("FAMS", indi)
	f.SetPointer(fams, fam)

	assert.True(t, f.Get(fam).IsPointedTo())
	assert.Contains(t, f.Get(fam).ReferencedBy, fams)
	assert.Equal(t, PayloadPointer, f.Get(fams).Payload.Kind)
}

func TestForestSetNullPointer(t *testing.T) {
	f := NewForest()
	h := f.New("FAMS", NoHandle)
	f.SetNullPointer(h)
	assert.Equal(t, PayloadNullPointer, f.Get(h).Payload.Kind)
}

func TestPayloadString(t *testing.T) {
	assert.Equal(t, "<absent>", Payload{Kind: PayloadAbsent}.String())
	assert.Equal(t, `"hi"`, Payload{Kind: PayloadString, Str: "hi"}.String())
	assert.Equal(t, "@VOID@", Payload{Kind: PayloadNullPointer}.String())
}
