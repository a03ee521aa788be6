package models

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pl8wrds/pl8wrds/internal/scoring"
)

// orthographicFile mirrors spec §6's on-disk orthographic_model.json
// shape exactly: trigrams/quartets tables plus a stats object.
type orthographicFile struct {
	Trigrams map[string]float64 `json:"trigrams"`
	Quartets map[string]float64 `json:"quartets"`
	Stats    struct {
		TotalNgrams  int     `json:"total_ngrams"`
		P10          float64 `json:"p10"`
		P99          float64 `json:"p99"`
		SmoothingEps float64 `json:"smoothing_eps"`
	} `json:"stats"`
}

// SaveOrthographic writes model to w in the §6 orthographic_model.json shape.
func SaveOrthographic(model *scoring.OrthographicModel, w io.Writer) error {
	var f orthographicFile
	f.Trigrams = model.Trigrams
	f.Quartets = model.Quartets
	f.Stats.TotalNgrams = model.TotalNgrams
	f.Stats.P10 = model.P10
	f.Stats.P99 = model.P99
	f.Stats.SmoothingEps = model.SmoothingEps
	return json.NewEncoder(w).Encode(f)
}

// LoadOrthographic reads an orthographic_model.json file.
func LoadOrthographic(r io.Reader) (*scoring.OrthographicModel, error) {
	var f orthographicFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode orthographic model: %w", err)
	}
	return &scoring.OrthographicModel{
		Trigrams:     f.Trigrams,
		Quartets:     f.Quartets,
		TotalNgrams:  f.Stats.TotalNgrams,
		P10:          f.Stats.P10,
		P99:          f.Stats.P99,
		SmoothingEps: f.Stats.SmoothingEps,
	}, nil
}

// plateEntry mirrors one plate's value in information_model.json.
type plateEntry struct {
	Solutions     []string `json:"solutions"`
	SolutionCount int      `json:"solution_count"`
}

// SaveInformation writes model to w in the §6 information_model.json
// shape: a flat map of plate -> {solutions, solution_count}, plus a
// reserved "__meta__" key carrying max_solutions.
func SaveInformation(model *scoring.InformationModel, w io.Writer) error {
	out := make(map[string]json.RawMessage, len(model.Plates)+1)
	for plate, ps := range model.Plates {
		b, err := json.Marshal(plateEntry{Solutions: ps.Solutions, SolutionCount: ps.Count})
		if err != nil {
			return fmt.Errorf("encode plate %q: %w", plate, err)
		}
		out[plate] = b
	}
	meta, err := json.Marshal(struct {
		MaxSolutions int `json:"max_solutions"`
	}{MaxSolutions: model.MaxSolutions})
	if err != nil {
		return err
	}
	out["__meta__"] = meta
	return json.NewEncoder(w).Encode(out)
}

// LoadInformation reads an information_model.json file.
func LoadInformation(r io.Reader) (*scoring.InformationModel, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode information model: %w", err)
	}

	model := &scoring.InformationModel{Plates: make(map[string]scoring.PlateSolutions, len(raw))}
	for plate, data := range raw {
		if plate == "__meta__" {
			var meta struct {
				MaxSolutions int `json:"max_solutions"`
			}
			if err := json.Unmarshal(data, &meta); err != nil {
				return nil, fmt.Errorf("decode __meta__: %w", err)
			}
			model.MaxSolutions = meta.MaxSolutions
			continue
		}
		var pe plateEntry
		if err := json.Unmarshal(data, &pe); err != nil {
			return nil, fmt.Errorf("decode plate %q: %w", plate, err)
		}
		model.Plates[plate] = scoring.PlateSolutions{Solutions: pe.Solutions, Count: pe.SolutionCount}
	}
	if model.MaxSolutions < 1 {
		model.MaxSolutions = 1
	}
	return model, nil
}
