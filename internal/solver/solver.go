// Package solver implements the subsequence matcher at the core of
// PL8WRDS: given a plate (an ordered letter sequence), find every corpus
// word that contains the plate's letters as an ordered subsequence.
package solver

import (
	"fmt"
	"sort"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/pl8wrds/pl8wrds/internal/corpus"
)

// PlateError is returned when a plate string fails the format contract.
type PlateError struct {
	Plate   string
	Message string
}

func (e *PlateError) Error() string {
	return fmt.Sprintf("bad plate %q: %s", e.Plate, e.Message)
}

// Options bound a Solve call. A zero Options admits all corpus words.
type Options struct {
	MinLength  int
	MaxLength  int
	MaxResults int
}

// Result is the outcome of a single Solve call.
type Result struct {
	Words   []string
	Count   int
	Elapsed time.Duration
}

// Index is the precomputed, load-time structure the spec calls for: a
// per-letter bitset over word ids for O(word-count) candidate filtering,
// plus per-word per-letter position lists for the exact greedy
// subsequence check. Index is built once from a corpus.Store and is
// read-only and goroutine-safe afterward.
type Index struct {
	// words[i] is the word assigned id i. Sorted lexicographically so
	// id order already matches the spec's required output order.
	words []string

	// letterBits[c] has bit i set iff words[i] contains the letter
	// 'a'+c at least once. The prefilter built from it checks letter
	// presence only, not letter counts: it rules out words that are
	// missing a required letter entirely, and a plate letter repeated
	// more often than the word holds it is caught by the ordered scan
	// that runs on the (usually much smaller) surviving candidate set.
	letterBits [26]*bitset.BitSet

	// letterPos[c][i] holds the sorted byte offsets of letter 'a'+c
	// within words[i] (nil if the letter is absent).
	letterPos [26][][]int
}

// Build indexes every word in the corpus for subsequence solving.
func Build(store *corpus.Store) *Index {
	words := store.Words() // already lexicographically sorted
	idx := &Index{words: words}

	n := uint(len(words))
	for c := 0; c < 26; c++ {
		idx.letterBits[c] = bitset.New(n)
		idx.letterPos[c] = make([][]int, len(words))
	}

	for wi, w := range words {
		for pos, r := range []byte(w) {
			c := int(r - 'a')
			if c < 0 || c >= 26 {
				continue
			}
			idx.letterBits[c].Set(uint(wi))
			idx.letterPos[c][wi] = append(idx.letterPos[c][wi], pos)
		}
	}
	return idx
}

// ValidatePlate checks the plate format contract: 3-8 uppercase ASCII
// letters.
func ValidatePlate(plate string) error {
	if len(plate) < 3 || len(plate) > 8 {
		return &PlateError{Plate: plate, Message: "length must be 3-8"}
	}
	for _, r := range plate {
		if r < 'A' || r > 'Z' {
			return &PlateError{Plate: plate, Message: "must be uppercase A-Z"}
		}
	}
	return nil
}

// Solve returns every candidate word in the index that contains plate's
// letters as an ordered subsequence (case-insensitive), subject to
// opts. Output is lexicographically ascending and deterministic for a
// fixed index.
func Solve(idx *Index, plate string, opts Options) (Result, error) {
	t0 := time.Now()
	if err := ValidatePlate(plate); err != nil {
		return Result{}, err
	}

	lower := make([]byte, len(plate))
	for i := 0; i < len(plate); i++ {
		lower[i] = plate[i] - 'A' + 'a'
	}

	candidates := candidateSet(idx, lower)

	matches := make([]string, 0, 64)
	for wi, ok := candidates.NextSet(0); ok; wi, ok = candidates.NextSet(wi + 1) {
		w := idx.words[wi]
		if opts.MinLength > 0 && len(w) < opts.MinLength {
			continue
		}
		if opts.MaxLength > 0 && len(w) > opts.MaxLength {
			continue
		}
		if matchesOrderedSubsequence(idx, int(wi), lower) {
			matches = append(matches, w)
		}
	}

	sort.Strings(matches)
	if opts.MaxResults > 0 && len(matches) > opts.MaxResults {
		matches = matches[:opts.MaxResults]
	}

	return Result{
		Words:   matches,
		Count:   len(matches),
		Elapsed: time.Since(t0),
	}, nil
}

// candidateSet intersects the per-letter bitsets for every distinct
// letter in the plate, yielding the set of words that contain every
// required letter at least once.
func candidateSet(idx *Index, lowerPlate []byte) *bitset.BitSet {
	seen := map[byte]bool{}
	var acc *bitset.BitSet
	for _, b := range lowerPlate {
		if seen[b] {
			continue
		}
		seen[b] = true
		c := int(b - 'a')
		if acc == nil {
			acc = idx.letterBits[c].Clone()
		} else {
			acc.InPlaceIntersection(idx.letterBits[c])
		}
	}
	if acc == nil {
		acc = bitset.New(uint(len(idx.words)))
	}
	return acc
}

// matchesOrderedSubsequence runs the bit-exact greedy match from spec
// §4.2: advance a cursor through the word, for each plate letter finding
// the first occurrence at or after cursor+1.
func matchesOrderedSubsequence(idx *Index, wordID int, lowerPlate []byte) bool {
	cursor := -1
	for _, b := range lowerPlate {
		c := int(b - 'a')
		positions := idx.letterPos[c][wordID]
		if len(positions) == 0 {
			return false
		}
		next := firstAfter(positions, cursor)
		if next < 0 {
			return false
		}
		cursor = next
	}
	return true
}

// firstAfter returns the smallest element of sorted positions that is
// strictly greater than after, or -1 if none exists.
func firstAfter(positions []int, after int) int {
	lo, hi := 0, len(positions)
	for lo < hi {
		mid := (lo + hi) / 2
		if positions[mid] > after {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if lo == len(positions) {
		return -1
	}
	return positions[lo]
}

// OrderedSubsequence is the reference (non-indexed) predicate named in
// spec §8's invariant: `w ∈ Solver(p) ↔ ordered_subsequence(lower(p),
// lower(w))`. It is used by tests and callers that want to check a
// single pair without building an Index.
func OrderedSubsequence(plate, word string) bool {
	p := []byte(plate)
	w := []byte(word)
	for i := range p {
		if p[i] >= 'A' && p[i] <= 'Z' {
			p[i] += 'a' - 'A'
		}
	}
	for i := range w {
		if w[i] >= 'A' && w[i] <= 'Z' {
			w[i] += 'a' - 'A'
		}
	}
	j := 0
	for i := 0; i < len(w) && j < len(p); i++ {
		if w[i] == p[j] {
			j++
		}
	}
	return j == len(p)
}
