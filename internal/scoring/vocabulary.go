package scoring

import (
	"sort"

	"github.com/pl8wrds/pl8wrds/internal/corpus"
)

// VocabularyScore carries the combined 0-100 score plus its three
// sub-scores for introspection, per spec §4.3.
type VocabularyScore struct {
	Combined          int
	InverseFrequency  float64
	PercentileRarity  float64
	ZScoreRarity      float64
}

// VocabularyScorer computes rarity scores against an immutable corpus.
// It holds no mutable state of its own; all statistics live in the
// corpus.Store it was built against, plus a sorted frequency table
// built once at construction for rank_percentile's tie rule.
type VocabularyScorer struct {
	store       *corpus.Store
	sortedFreqs []int // ascending, one entry per corpus word
}

// NewVocabularyScorer binds a scorer to a corpus snapshot.
func NewVocabularyScorer(store *corpus.Store) *VocabularyScorer {
	freqs := make([]int, 0, store.Size())
	store.IterWords(func(e corpus.Entry) bool {
		freqs = append(freqs, e.Frequency)
		return true
	})
	sort.Ints(freqs)
	return &VocabularyScorer{store: store, sortedFreqs: freqs}
}

// rankWithTiesHigh returns the rank of freq under modified competition
// ranking: words with equal frequency all share the highest rank their
// tied group spans, i.e. rank = count(words with frequency <= freq).
// This is distinct from corpus.Store.Rank, whose ties are broken
// lexicographically for a different invariant (§4.1).
func (s *VocabularyScorer) rankWithTiesHigh(freq int) int {
	return sort.SearchInts(s.sortedFreqs, freq+1)
}

// Score computes the vocabulary sophistication score for word (spec
// §4.3 steps 1-6). Fails with ErrWordNotInCorpus if word isn't present.
func (s *VocabularyScorer) Score(word string) (VocabularyScore, error) {
	logFreq, ok := s.store.LogFrequency(word)
	if !ok {
		return VocabularyScore{}, newErr(ErrWordNotInCorpus, "word not in corpus", map[string]any{"word": word})
	}
	freq, _ := s.store.Frequency(word)
	rank := s.rankWithTiesHigh(freq)
	mean, std, min, max := s.store.LogFreqMoments()
	total := s.store.Size()

	var inverseFreq float64
	if max > min {
		inverseFreq = 100 * (1 - (logFreq-min)/(max-min))
	} else {
		inverseFreq = 50 // no variation in the corpus to rank against
	}

	var rankPercentile float64
	if total > 1 {
		rankPercentile = float64(rank-1) / float64(total-1) * 100
	} else {
		rankPercentile = 100
	}
	percentileRarity := 100 - rankPercentile

	var z float64
	if std > 0 {
		z = clamp(50-25*((logFreq-mean)/std), 0, 100)
	} else {
		z = 50
	}

	combined := 0.4*inverseFreq + 0.4*percentileRarity + 0.2*z

	return VocabularyScore{
		Combined:         clampScore(combined),
		InverseFrequency: inverseFreq,
		PercentileRarity: percentileRarity,
		ZScoreRarity:     z,
	}, nil
}
