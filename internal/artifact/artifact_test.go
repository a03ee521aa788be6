package artifact

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSample() (*Artifact, Dictionary) {
	scores := map[string][2]int{
		"about":     {90, 40},
		"ambulance": {60, 70},
	}
	dict, wordToID := BuildDictionary(scores)

	a := &Artifact{
		Metadata: Metadata{TotalPlates: 1, TotalSolutions: 2, GenerationDate: "2026-08-01", MaxSolutions: 2, CorpusHash: "deadbeef"},
		Plates: []PlateRecord{
			{
				Letters: []string{"A", "B", "C"},
				Solutions: map[string]int{
					wordToID["about"]:     55,
					wordToID["ambulance"]: 30,
				},
			},
		},
	}
	return a, dict
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	a, dict := buildSample()

	var gzBuf, dictBuf bytes.Buffer
	require.NoError(t, Encode(a, dict, &gzBuf, &dictBuf))

	got, gotDict, err := Decode(&gzBuf, &dictBuf)
	require.NoError(t, err)
	assert.Equal(t, a.Metadata, got.Metadata)
	assert.Len(t, got.Plates, 1)
	assert.Len(t, gotDict, 2)
}

func TestDecode_TotalPlatesMismatch(t *testing.T) {
	a, dict := buildSample()
	a.Metadata.TotalPlates = 5

	var gzBuf, dictBuf bytes.Buffer
	require.NoError(t, Encode(a, dict, &gzBuf, &dictBuf))

	_, _, err := Decode(&gzBuf, &dictBuf)
	require.Error(t, err)
	var ie *InvalidError
	require.ErrorAs(t, err, &ie)
}

func TestDecode_DanglingWordReference(t *testing.T) {
	a, dict := buildSample()
	a.Plates[0].Solutions["999"] = 10

	var gzBuf, dictBuf bytes.Buffer
	require.NoError(t, Encode(a, dict, &gzBuf, &dictBuf))

	_, _, err := Decode(&gzBuf, &dictBuf)
	require.Error(t, err)
}

func TestDecode_ScoreOutOfRange(t *testing.T) {
	a, dict := buildSample()
	for id := range a.Plates[0].Solutions {
		a.Plates[0].Solutions[id] = 150
	}

	var gzBuf, dictBuf bytes.Buffer
	require.NoError(t, Encode(a, dict, &gzBuf, &dictBuf))

	_, _, err := Decode(&gzBuf, &dictBuf)
	require.Error(t, err)
}

func TestDecode_NotGzip(t *testing.T) {
	a, dict := buildSample()
	var dictBuf bytes.Buffer
	require.NoError(t, Encode(a, dict, new(bytes.Buffer), &dictBuf))

	_, _, err := Decode(bytes.NewBufferString("not gzip"), &dictBuf)
	require.Error(t, err)
}

func TestBuildDictionary_DenseLexicographicIDs(t *testing.T) {
	scores := map[string][2]int{"zebra": {1, 1}, "apple": {2, 2}, "mango": {3, 3}}
	dict, wordToID := BuildDictionary(scores)
	assert.Equal(t, "0", wordToID["apple"])
	assert.Equal(t, "1", wordToID["mango"])
	assert.Equal(t, "2", wordToID["zebra"])
	assert.Len(t, dict, 3)
}

func TestEnsembleFromParts_MatchesRounding(t *testing.T) {
	assert.Equal(t, 65, EnsembleFromParts(77, 65, 54))
	assert.Equal(t, 2, EnsembleFromParts(1, 1, 5))
}
