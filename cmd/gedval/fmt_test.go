package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cacack/ged7/dialect"
	"github.com/cacack/ged7/diag"
	"github.com/cacack/ged7/tagtree"
)

func TestFmtRoundTripPreservesLines(t *testing.T) {
	src := "0 @I1@ INDI\n1 NAME Jane /Doe/\n0 TRLR\n"
	cfg := dialect.GEDCOM7()

	sink := diag.NewSink()
	forest, err := tagtree.Parse(strings.NewReader(src), cfg, sink)
	require.NoError(t, err)

	out, err := tagtree.Serialize(forest, cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "@I1@ INDI")
	assert.Contains(t, out, "NAME Jane /Doe/")
}
