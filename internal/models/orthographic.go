// Package models builds the two trained artifacts the scoring engine
// depends on: the orthographic n-gram model (C7, spec §4.7) and the
// information model (C7, spec §4.7), both derived once from a corpus
// and thereafter immutable.
package models

import (
	"math"
	"sort"

	"github.com/pl8wrds/pl8wrds/internal/corpus"
	"github.com/pl8wrds/pl8wrds/internal/scoring"
)

// BuildOrthographic counts trigram and quartet occurrences across every
// corpus word (boundary-marked with ^/$), normalizes each n-gram order
// to a probability distribution, and derives the p10/p99 calibration
// points used to map surprisal onto 0-100.
//
// The counting pass mirrors the posting-style accumulation in
// KittClouds-Angular-GO's pkg/qgram/indexer.go (a gram -> frequency map
// built by sliding a fixed-width window across each document), adapted
// here to two fixed n-gram orders over single words instead of a
// generic configurable q over multi-field documents.
func BuildOrthographic(store *corpus.Store) *scoring.OrthographicModel {
	triCounts := make(map[string]int)
	quadCounts := make(map[string]int)
	var triTotal, quadTotal int

	store.IterWords(func(e corpus.Entry) bool {
		bounded := "^" + e.Word + "$"
		for _, g := range extractGrams(bounded, 3) {
			triCounts[g]++
			triTotal++
		}
		for _, g := range extractGrams(bounded, 4) {
			quadCounts[g]++
			quadTotal++
		}
		return true
	})

	triProbs := normalize(triCounts, triTotal)
	quadProbs := normalize(quadCounts, quadTotal)
	totalNgrams := triTotal + quadTotal
	eps := smoothingEps(totalNgrams)

	model := &scoring.OrthographicModel{
		Trigrams:     triProbs,
		Quartets:     quadProbs,
		TotalNgrams:  totalNgrams,
		SmoothingEps: eps,
	}

	p10, p99 := calibrate(store, model)
	model.P10 = p10
	model.P99 = p99
	return model
}

func extractGrams(s string, n int) []string {
	if len(s) < n {
		return nil
	}
	out := make([]string, 0, len(s)-n+1)
	for i := 0; i+n <= len(s); i++ {
		out = append(out, s[i:i+n])
	}
	return out
}

func normalize(counts map[string]int, total int) map[string]float64 {
	probs := make(map[string]float64, len(counts))
	if total == 0 {
		return probs
	}
	for gram, c := range counts {
		probs[gram] = float64(c) / float64(total)
	}
	return probs
}

func smoothingEps(totalNgrams int) float64 {
	if totalNgrams == 0 {
		return 1
	}
	return 1 / (float64(totalNgrams) * 2)
}

// calibrate computes the p10/p99 of combined_surprisal across every
// corpus word of length >= 2 using a model whose P10/P99 aren't set
// yet. It reads the raw surprisal through rawSurprisalScorer, since
// scoring.OrthographicScorer.Score on such a model only returns its
// "P99<=P10" neutral constant. This two-pass structure (count
// n-grams, then calibrate against the resulting probabilities) mirrors
// how the teacher's WAND scorer in pkg/qgram/scorer.go first builds
// corpus-wide GramStats before any per-query scoring happens.
func calibrate(store *corpus.Store, model *scoring.OrthographicModel) (p10, p99 float64) {
	uncalibrated := &scoring.OrthographicModel{
		Trigrams: model.Trigrams, Quartets: model.Quartets,
		SmoothingEps: model.SmoothingEps,
		P10:          0, P99: 0,
	}
	scorer := rawSurprisalScorer{model: uncalibrated}

	surprisals := make([]float64, 0, store.Size())
	store.IterWords(func(e corpus.Entry) bool {
		if len(e.Word) >= 2 {
			surprisals = append(surprisals, scorer.combinedSurprisal(e.Word))
		}
		return true
	})
	if len(surprisals) == 0 {
		return 0, 1
	}
	sort.Float64s(surprisals)
	return percentile(surprisals, 10), percentile(surprisals, 99)
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := p / 100 * float64(len(sorted)-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// rawSurprisalScorer recomputes the uncalibrated combined_surprisal
// used only during calibration; it duplicates the tiny averaging
// arithmetic of scoring.OrthographicScorer rather than importing its
// normalized Score, since Score's output here would always be the
// P99<=P10 fallback constant.
type rawSurprisalScorer struct {
	model *scoring.OrthographicModel
}

func (r rawSurprisalScorer) combinedSurprisal(word string) float64 {
	bounded := "^" + word + "$"
	tri := r.avg(bounded, 3, r.model.Trigrams)
	quad := r.avg(bounded, 4, r.model.Quartets)
	return 0.5*tri + 0.5*quad
}

func (r rawSurprisalScorer) avg(bounded string, n int, table map[string]float64) float64 {
	grams := extractGrams(bounded, n)
	if len(grams) == 0 {
		return log2(1 / r.model.SmoothingEps)
	}
	var sum float64
	for _, g := range grams {
		p, ok := table[g]
		if !ok || p <= 0 {
			p = r.model.SmoothingEps
		}
		sum += log2(1 / p)
	}
	return sum / float64(len(grams))
}

func log2(x float64) float64 {
	return math.Log2(x)
}
