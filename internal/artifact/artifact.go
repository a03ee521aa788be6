// Package artifact encodes and decodes the shipped game data: a
// gzipped JSON plate array referencing a shared word dictionary (spec
// §4.9). This is the bit-level contract the game client and the test
// suite both rely on.
package artifact

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
)

// Metadata is File A's top-level metadata object.
type Metadata struct {
	TotalPlates     int    `json:"total_plates"`
	TotalSolutions  int    `json:"total_solutions"`
	GenerationDate  string `json:"generation_date"`
	MaxSolutions    int    `json:"max_solutions"`
	CorpusHash      string `json:"corpus_hash"`
}

// PlateRecord is one entry of File A's `plates` array: the plate's
// letters plus word_id -> information score.
type PlateRecord struct {
	Letters   []string       `json:"letters"`
	Solutions map[string]int `json:"solutions"`
}

// Artifact is File A in full.
type Artifact struct {
	Metadata Metadata      `json:"metadata"`
	Plates   []PlateRecord `json:"plates"`
}

// DictionaryEntry is one entry of File B.
type DictionaryEntry struct {
	Word               string `json:"word"`
	FrequencyScore     int    `json:"frequency_score"`
	OrthographicScore  int    `json:"orthographic_score"`
}

// Dictionary is File B in full: word_id (string-encoded int) -> entry.
type Dictionary map[string]DictionaryEntry

// InvalidError is returned by Decode when the artifact fails validation
// (spec §4.9's decoder contract): type/range checks, cross-reference
// closure, or the total_plates/len(plates) invariant.
type InvalidError struct {
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("artifact invalid: %s", e.Reason)
}

// BuildDictionary assigns word ids densely in lexicographic order of
// word, per spec §4.9. scores maps word -> (frequencyScore,
// orthographicScore); words missing from scores are rejected by the
// caller before this is invoked (BuildDictionary trusts its input).
func BuildDictionary(scores map[string][2]int) (Dictionary, map[string]string) {
	words := make([]string, 0, len(scores))
	for w := range scores {
		words = append(words, w)
	}
	sort.Strings(words)

	dict := make(Dictionary, len(words))
	wordToID := make(map[string]string, len(words))
	for id, w := range words {
		idStr := fmt.Sprintf("%d", id)
		s := scores[w]
		dict[idStr] = DictionaryEntry{Word: w, FrequencyScore: s[0], OrthographicScore: s[1]}
		wordToID[w] = idStr
	}
	return dict, wordToID
}

// EnsembleFromParts reconstructs the ensemble score at load time, per
// spec §4.9: round((frequency_score + info_score + orthographic_score) / 3),
// half-away-from-zero (the same rounding mode fixed in internal/scoring).
func EnsembleFromParts(frequencyScore, infoScore, orthographicScore int) int {
	sum := float64(frequencyScore + infoScore + orthographicScore)
	x := sum / 3
	if x >= 0 {
		return int(math.Floor(x + 0.5))
	}
	return -int(math.Floor(-x + 0.5))
}

// Encode writes File A (gzip'd JSON) to gzOut and File B (plain JSON)
// to dictOut.
func Encode(a *Artifact, dict Dictionary, gzOut io.Writer, dictOut io.Writer) error {
	gw := gzip.NewWriter(gzOut)
	enc := json.NewEncoder(gw)
	if err := enc.Encode(a); err != nil {
		gw.Close()
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := gw.Close(); err != nil {
		return fmt.Errorf("flush gzip: %w", err)
	}

	if err := json.NewEncoder(dictOut).Encode(dict); err != nil {
		return fmt.Errorf("encode dictionary: %w", err)
	}
	return nil
}

// Decode reads and validates both files, returning InvalidError (never
// a partial result) on any contract violation.
func Decode(gzIn io.Reader, dictIn io.Reader) (*Artifact, Dictionary, error) {
	gr, err := gzip.NewReader(gzIn)
	if err != nil {
		return nil, nil, &InvalidError{Reason: fmt.Sprintf("not gzip: %v", err)}
	}
	defer gr.Close()

	var a Artifact
	if err := json.NewDecoder(gr).Decode(&a); err != nil {
		return nil, nil, &InvalidError{Reason: fmt.Sprintf("decode artifact json: %v", err)}
	}

	var dict Dictionary
	if err := json.NewDecoder(dictIn).Decode(&dict); err != nil {
		return nil, nil, &InvalidError{Reason: fmt.Sprintf("decode dictionary json: %v", err)}
	}

	if err := validate(&a, dict); err != nil {
		return nil, nil, err
	}
	return &a, dict, nil
}

func validate(a *Artifact, dict Dictionary) error {
	if a.Metadata.TotalPlates != len(a.Plates) {
		return &InvalidError{Reason: fmt.Sprintf(
			"metadata.total_plates=%d but len(plates)=%d", a.Metadata.TotalPlates, len(a.Plates))}
	}
	for _, entry := range dict {
		if entry.FrequencyScore < 0 || entry.FrequencyScore > 100 {
			return &InvalidError{Reason: fmt.Sprintf("dictionary entry %q frequency_score out of range", entry.Word)}
		}
		if entry.OrthographicScore < 0 || entry.OrthographicScore > 100 {
			return &InvalidError{Reason: fmt.Sprintf("dictionary entry %q orthographic_score out of range", entry.Word)}
		}
	}
	for _, p := range a.Plates {
		if len(p.Letters) < 3 || len(p.Letters) > 8 {
			return &InvalidError{Reason: fmt.Sprintf("plate %v has invalid letter count", p.Letters)}
		}
		for wordID, score := range p.Solutions {
			if score < 0 || score > 100 {
				return &InvalidError{Reason: fmt.Sprintf("plate %v solution %q score out of range", p.Letters, wordID)}
			}
			if _, ok := dict[wordID]; !ok {
				return &InvalidError{Reason: fmt.Sprintf("plate %v references unknown word_id %q", p.Letters, wordID)}
			}
		}
	}
	return nil
}
