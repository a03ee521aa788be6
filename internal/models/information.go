package models

import (
	"sort"

	"github.com/pl8wrds/pl8wrds/internal/solver"
	"github.com/pl8wrds/pl8wrds/internal/scoring"
)

// PlateUniverse enumerates the plates an information model (and the
// precomputation pipeline) covers. The spec's shipped dataset uses only
// length-3 uppercase plates (§9's Open Question: "the precomputation
// pipeline should treat the universe as a parameter defaulting to
// length-3"); DefaultPlateUniverse below is that default.
type PlateUniverse struct {
	Length int
}

// DefaultPlateUniverse returns the shipped 3-letter, 17,576-plate
// universe (26^3, spec §3).
func DefaultPlateUniverse() PlateUniverse {
	return PlateUniverse{Length: 3}
}

// All generates every plate in the universe in lexicographic order.
func (u PlateUniverse) All() []string {
	if u.Length <= 0 {
		return nil
	}
	total := 1
	for i := 0; i < u.Length; i++ {
		total *= 26
	}
	out := make([]string, total)
	buf := make([]byte, u.Length)
	for i := 0; i < total; i++ {
		n := i
		for p := u.Length - 1; p >= 0; p-- {
			buf[p] = byte('A' + n%26)
			n /= 26
		}
		out[i] = string(buf)
	}
	return out
}

// BuildInformation runs the subsequence solver over every plate in
// universe and assembles the Information Model (spec §4.7): for each
// plate, its lexicographically sorted solution list, plus the
// corpus-wide MAX_SOLUTIONS constant (the largest solution count
// observed over any plate), persisted into model metadata so the
// artifact is self-describing per §9's Open Question resolution.
func BuildInformation(idx *solver.Index, universe PlateUniverse) *scoring.InformationModel {
	plates := make(map[string]scoring.PlateSolutions)
	maxSolutions := 0

	for _, plate := range universe.All() {
		res, err := solver.Solve(idx, plate, solver.Options{})
		if err != nil {
			// Universe generation only emits well-formed plates; a
			// failure here indicates a programming error upstream.
			panic(err)
		}
		words := append([]string(nil), res.Words...)
		sort.Strings(words)
		plates[plate] = scoring.PlateSolutions{Solutions: words, Count: len(words)}
		if len(words) > maxSolutions {
			maxSolutions = len(words)
		}
	}

	if maxSolutions < 1 {
		maxSolutions = 1
	}

	return &scoring.InformationModel{Plates: plates, MaxSolutions: maxSolutions}
}

// DifficultyTier implements the shared client/server bucketing from
// spec §6: more solutions means an easier (lower-numbered) plate.
func DifficultyTier(solutionCount int) int {
	switch {
	case solutionCount <= 10:
		return 95
	case solutionCount <= 25:
		return 85
	case solutionCount <= 50:
		return 70
	case solutionCount <= 100:
		return 50
	case solutionCount <= 200:
		return 30
	case solutionCount <= 400:
		return 15
	default:
		return 5
	}
}
