// Package api defines the thin HTTP collaborator interface spec.md
// calls for (§1 lists the router as a non-goal: "specify their
// interface only, not internals"). Handlers exposes one exported
// http.HandlerFunc per endpoint; callers mount them on whatever router
// they choose. No web framework is introduced here.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pl8wrds/pl8wrds/internal/artifact"
	"github.com/pl8wrds/pl8wrds/internal/scoring"
	"github.com/pl8wrds/pl8wrds/internal/solver"
)

// Handlers binds the loaded artifact and solver index that every
// endpoint reads from. Both are immutable after construction, so a
// Handlers value is safe for concurrent use by many requests.
type Handlers struct {
	Index       *solver.Index
	Dict        artifact.Dictionary
	WordToID    map[string]string
	PlatesByKey map[string]artifact.PlateRecord
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response body")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// solveResponse is the /solve/:plate payload: every dictionary word
// that is an ordered subsequence match for the plate, independent of
// whether it was retained in the precomputed artifact.
type solveResponse struct {
	Plate string   `json:"plate"`
	Words []string `json:"words"`
	Count int      `json:"count"`
}

// Solve handles GET /solve/{plate}.
func (h *Handlers) Solve(w http.ResponseWriter, r *http.Request) {
	plate := strings.ToUpper(pathTail(r.URL.Path, "/solve/"))
	res, err := solver.Solve(h.Index, plate, solver.Options{})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, solveResponse{Plate: plate, Words: res.Words, Count: res.Count})
}

// scoreResponse is the /score/:plate/:word payload.
type scoreResponse struct {
	Plate              string `json:"plate"`
	Word               string `json:"word"`
	Ensemble           int    `json:"ensemble_score"`
	Band               string `json:"interpretation_band"`
	FrequencyScore     int    `json:"frequency_score"`
	OrthographicScore  int    `json:"orthographic_score"`
}

// Score handles GET /score/{plate}/{word}, looking the pair up in the
// precomputed artifact rather than re-running the scoring pipeline.
func (h *Handlers) Score(w http.ResponseWriter, r *http.Request) {
	rest := pathTail(r.URL.Path, "/score/")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		writeError(w, http.StatusBadRequest, "expected /score/{plate}/{word}")
		return
	}
	plate := strings.ToUpper(parts[0])
	word := strings.ToLower(parts[1])

	record, ok := h.PlatesByKey[plate]
	if !ok {
		writeError(w, http.StatusNotFound, "plate not found")
		return
	}
	wordID, ok := h.WordToID[word]
	if !ok {
		writeError(w, http.StatusNotFound, "word not in dictionary")
		return
	}
	infoScore, ok := record.Solutions[wordID]
	if !ok {
		writeError(w, http.StatusNotFound, "word is not a solution for this plate")
		return
	}
	entry := h.Dict[wordID]
	ensemble := artifact.EnsembleFromParts(entry.FrequencyScore, infoScore, entry.OrthographicScore)

	writeJSON(w, http.StatusOK, scoreResponse{
		Plate: plate, Word: word, Ensemble: ensemble, Band: string(scoring.Interpret(ensemble)),
		FrequencyScore: entry.FrequencyScore, OrthographicScore: entry.OrthographicScore,
	})
}

// plateResponse is the /plates/:plate payload.
type plateResponse struct {
	Plate         string   `json:"plate"`
	SolutionCount int      `json:"solution_count"`
	Words         []string `json:"words"`
}

// Plates handles GET /plates/{plate}, returning the precomputed
// solution list (not a live solver run).
func (h *Handlers) Plates(w http.ResponseWriter, r *http.Request) {
	plate := strings.ToUpper(pathTail(r.URL.Path, "/plates/"))
	record, ok := h.PlatesByKey[plate]
	if !ok {
		writeError(w, http.StatusNotFound, "plate not found")
		return
	}
	words := make([]string, 0, len(record.Solutions))
	for wordID := range record.Solutions {
		words = append(words, h.Dict[wordID].Word)
	}
	writeJSON(w, http.StatusOK, plateResponse{Plate: plate, SolutionCount: len(words), Words: words})
}

// Healthz handles GET /healthz.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathTail(path, prefix string) string {
	return strings.TrimPrefix(strings.TrimPrefix(path, prefix), "/")
}

