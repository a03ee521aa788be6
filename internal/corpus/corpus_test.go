package corpus

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Load Tests
// =============================================================================

func TestLoadReader_ArrayShape(t *testing.T) {
	src := `[{"word":"cab","frequency":5},{"word":"about","frequency":100}]`
	s, err := LoadReader(strings.NewReader(src))
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, 2, s.Size())

	freq, ok := s.Frequency("ABOUT")
	assert.True(t, ok)
	assert.Equal(t, 100, freq)
}

func TestLoadReader_ObjectShape(t *testing.T) {
	src := `{"cab":5,"about":100}`
	s, err := LoadReader(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Size())
}

func TestLoadReader_RejectsNonConforming(t *testing.T) {
	src := `[{"word":"x2","frequency":5},{"word":"cab","frequency":0},{"word":"ambulance","frequency":10}]`
	s, err := LoadReader(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Size())
	assert.Equal(t, 2, s.Stats().RejectedLines)
}

func TestLoadReader_Empty(t *testing.T) {
	_, err := LoadReader(strings.NewReader(`[]`))
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrEmpty, le.Kind)
}

func TestLoadReader_Malformed(t *testing.T) {
	_, err := LoadReader(strings.NewReader(`not json`))
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrMalformed, le.Kind)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/corpus.json")
	require.Error(t, err)
	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrNotFound, le.Kind)
}

// =============================================================================
// Store Contract Tests
// =============================================================================

func mustLoad(t *testing.T, src string) *Store {
	t.Helper()
	s, err := LoadReader(strings.NewReader(src))
	require.NoError(t, err)
	return s
}

func TestStore_IterWordsIsLexicographic(t *testing.T) {
	s := mustLoad(t, `{"zebra":1,"ambulance":10,"cab":5}`)
	var got []string
	s.IterWords(func(e Entry) bool {
		got = append(got, e.Word)
		return true
	})
	assert.Equal(t, []string{"ambulance", "cab", "zebra"}, got)
}

func TestStore_RankTiesBreakLexicographically(t *testing.T) {
	s := mustLoad(t, `{"cab":5,"arc":5,"about":100}`)
	rArc, _ := s.Rank("arc")
	rCab, _ := s.Rank("cab")
	rAbout, _ := s.Rank("about")
	assert.Less(t, rArc, rCab)
	assert.Less(t, rCab, rAbout)
}

func TestStore_ContainsIsCaseInsensitive(t *testing.T) {
	s := mustLoad(t, `{"ambulance":10}`)
	assert.True(t, s.Contains("AMBULANCE"))
	assert.True(t, s.Contains("ambulance"))
	assert.False(t, s.Contains("missing"))
}

func TestStore_LogFreqMoments(t *testing.T) {
	s := mustLoad(t, `{"aa":1,"bb":1,"ccc":1}`)
	mean, std, min, max := s.LogFreqMoments()
	// all three words share frequency 1, so log10(2) for all; std == 0.
	assert.InDelta(t, 0, std, 1e-9)
	assert.InDelta(t, min, max, 1e-9)
	assert.InDelta(t, mean, min, 1e-9)
}
