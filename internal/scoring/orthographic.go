package scoring

import "math"

// OrthographicModel holds the trigram/quartet probability tables built
// by the model builder (spec §4.7) plus the normalization stats used to
// map raw surprisal onto a 0-100 scale (spec §4.4 step 4).
type OrthographicModel struct {
	Trigrams     map[string]float64
	Quartets     map[string]float64
	TotalNgrams  int
	P10, P99     float64
	SmoothingEps float64
}

// OrthographicScorer scores a word's letter-pattern complexity against
// a trained OrthographicModel. Stateless beyond the model reference.
type OrthographicScorer struct {
	model *OrthographicModel
}

// NewOrthographicScorer binds a scorer to a trained model.
func NewOrthographicScorer(model *OrthographicModel) *OrthographicScorer {
	return &OrthographicScorer{model: model}
}

// Score computes the orthographic complexity score for word (spec
// §4.4). Returns 0 for words shorter than 2 letters; never otherwise
// fails for a well-formed word, since unseen n-grams fall back to the
// model's smoothing epsilon.
func (s *OrthographicScorer) Score(word string) int {
	if len(word) < 2 {
		return 0
	}
	bounded := "^" + word + "$"

	avgTri := s.avgSurprisal(bounded, 3, s.model.Trigrams)
	avgQuad := s.avgSurprisal(bounded, 4, s.model.Quartets)
	combined := 0.5*avgTri + 0.5*avgQuad

	if s.model.P99 <= s.model.P10 {
		return clampScore(50)
	}
	normalized := 100 * (combined - s.model.P10) / (s.model.P99 - s.model.P10)
	return clampScore(normalized)
}

// avgSurprisal returns mean(-log2 P(ngram)) over every n-gram of size n
// extracted from bounded, falling back to the model's smoothing epsilon
// for n-grams never observed during training.
func (s *OrthographicScorer) avgSurprisal(bounded string, n int, table map[string]float64) float64 {
	if len(bounded) < n {
		return -math.Log2(s.model.SmoothingEps)
	}
	var sum float64
	count := 0
	for i := 0; i+n <= len(bounded); i++ {
		gram := bounded[i : i+n]
		p, ok := table[gram]
		if !ok || p <= 0 {
			p = s.model.SmoothingEps
		}
		sum += -math.Log2(p)
		count++
	}
	if count == 0 {
		return -math.Log2(s.model.SmoothingEps)
	}
	return sum / float64(count)
}
