package scoring

import (
	"github.com/chewxy/math32"
)

// PlateSolutions is the per-plate entry of the Information Model (spec
// §4.7): the ordered solution list plus its count, persisted verbatim
// into `information_model.json`.
type PlateSolutions struct {
	Solutions []string
	Count     int
}

// InformationModel maps plate letters to their solution set, plus the
// corpus-derived MAX_SOLUTIONS constant used to normalize surprisal
// onto 0-100 (spec §4.5 step 4, and the persisted-constant decision in
// §9's Open Questions).
type InformationModel struct {
	Plates       map[string]PlateSolutions
	MaxSolutions int
}

// InformationScorer computes how "surprising" a word is within its
// plate's uniform solution distribution.
type InformationScorer struct {
	model *InformationModel
}

// NewInformationScorer binds a scorer to a trained InformationModel.
func NewInformationScorer(model *InformationModel) *InformationScorer {
	return &InformationScorer{model: model}
}

// Score implements spec §4.5: P(w|p) = 1/k for a solution set of size
// k, information_content = -log2 P(w|p) = log2(k), normalized against
// MaxSolutions. Fails with ErrNotASolution if word isn't a solution of
// plate.
//
// log2(k) is computed in float32: this scorer runs once per (plate,
// word) pair during the ~7M-pair precomputation sweep (spec §2), and
// k (a plate's solution count) never exceeds the corpus size, so float32's ~7 significant
// digits carry no measurable rounding risk while halving the register
// traffic of the hot loop.
func (s *InformationScorer) Score(plate, word string) (int, error) {
	ps, ok := s.model.Plates[plate]
	if !ok {
		return 0, newErr(ErrNotASolution, "plate has no solution set", map[string]any{"plate": plate})
	}
	found := false
	for _, w := range ps.Solutions {
		if w == word {
			found = true
			break
		}
	}
	if !found {
		return 0, newErr(ErrNotASolution, "word is not a solution of plate", map[string]any{"plate": plate, "word": word})
	}

	if ps.Count <= 1 || s.model.MaxSolutions <= 1 {
		return 0, nil
	}

	infoContent := math32.Log2(float32(ps.Count))
	maxInfo := math32.Log2(float32(s.model.MaxSolutions))
	normalized := 100 * infoContent / maxInfo

	return clampScore(float64(normalized)), nil
}
