package solver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pl8wrds/pl8wrds/internal/corpus"
)

func buildIndex(t *testing.T, src string) *Index {
	t.Helper()
	st, err := corpus.LoadReader(strings.NewReader(src))
	require.NoError(t, err)
	return Build(st)
}

// S1: solver subsequence semantics.
func TestSolve_S1_Semantics(t *testing.T) {
	idx := buildIndex(t, `{"ambulance":10,"cab":5,"cabin":4,"arc":3,"about":100}`)
	res, err := Solve(idx, "ABC", Options{})
	require.NoError(t, err)
	// Only ambulance has a, b, c in order: about has no c, cab and cabin
	// put c first, arc has no b.
	assert.Equal(t, []string{"ambulance"}, res.Words)
}

// S2: solver gaps.
func TestSolve_S2_Gaps(t *testing.T) {
	idx := buildIndex(t, `{"ambulance":1}`)

	res, err := Solve(idx, "AMB", Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ambulance"}, res.Words)

	res, err = Solve(idx, "MBA", Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Words)
}

func TestSolve_BadPlate(t *testing.T) {
	idx := buildIndex(t, `{"ambulance":1}`)

	_, err := Solve(idx, "AB", Options{})
	require.Error(t, err)
	var pe *PlateError
	require.ErrorAs(t, err, &pe)

	_, err = Solve(idx, "A1C", Options{})
	require.Error(t, err)
}

func TestSolve_Deterministic(t *testing.T) {
	idx := buildIndex(t, `{"ambulance":10,"cab":5,"cabin":4,"arc":3,"about":100,"abacus":2}`)
	r1, err := Solve(idx, "ABC", Options{})
	require.NoError(t, err)
	r2, err := Solve(idx, "ABC", Options{})
	require.NoError(t, err)
	assert.Equal(t, r1.Words, r2.Words)
}

func TestSolve_Options(t *testing.T) {
	idx := buildIndex(t, `{"ambulance":10,"about":100}`)
	res, err := Solve(idx, "ABC", Options{MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, res.Words, 1)

	res, err = Solve(idx, "ABC", Options{MinLength: 7})
	require.NoError(t, err)
	assert.Equal(t, []string{"ambulance"}, res.Words)
}

func TestOrderedSubsequence_MatchesSolverInvariant(t *testing.T) {
	idx := buildIndex(t, `{"ambulance":10,"cab":5,"cabin":4,"arc":3,"about":100}`)
	res, err := Solve(idx, "ABC", Options{})
	require.NoError(t, err)

	inSolution := map[string]bool{}
	for _, w := range res.Words {
		inSolution[w] = true
	}

	for _, w := range []string{"ambulance", "cab", "cabin", "arc", "about"} {
		assert.Equal(t, inSolution[w], OrderedSubsequence("ABC", w), "word=%s", w)
	}
}
