package models

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pl8wrds/pl8wrds/internal/scoring"
)

func TestOrthographic_SaveLoad_RoundTrip(t *testing.T) {
	model := &scoring.OrthographicModel{
		Trigrams:     map[string]float64{"^ab": 0.1, "abc": 0.2},
		Quartets:     map[string]float64{"^abc": 0.3},
		TotalNgrams:  42,
		P10:          1.5,
		P99:          9.5,
		SmoothingEps: 0.001,
	}
	var buf bytes.Buffer
	require.NoError(t, SaveOrthographic(model, &buf))

	got, err := LoadOrthographic(&buf)
	require.NoError(t, err)
	assert.Equal(t, model, got)
}

func TestInformation_SaveLoad_RoundTrip(t *testing.T) {
	model := &scoring.InformationModel{
		Plates: map[string]scoring.PlateSolutions{
			"ABC": {Solutions: []string{"about", "cab"}, Count: 2},
			"XYZ": {Solutions: nil, Count: 0},
		},
		MaxSolutions: 2,
	}
	var buf bytes.Buffer
	require.NoError(t, SaveInformation(model, &buf))

	got, err := LoadInformation(&buf)
	require.NoError(t, err)
	assert.Equal(t, model.MaxSolutions, got.MaxSolutions)
	assert.Equal(t, model.Plates["ABC"], got.Plates["ABC"])
	assert.Equal(t, 0, got.Plates["XYZ"].Count)
}

func TestInformation_MetaKeyExcludedFromPlates(t *testing.T) {
	model := &scoring.InformationModel{
		Plates:       map[string]scoring.PlateSolutions{"AAA": {Solutions: []string{"a"}, Count: 1}},
		MaxSolutions: 1,
	}
	var buf bytes.Buffer
	require.NoError(t, SaveInformation(model, &buf))

	got, err := LoadInformation(&buf)
	require.NoError(t, err)
	_, hasMetaAsPlate := got.Plates["__meta__"]
	assert.False(t, hasMetaAsPlate)
}
