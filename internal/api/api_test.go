package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pl8wrds/pl8wrds/internal/artifact"
	"github.com/pl8wrds/pl8wrds/internal/corpus"
	"github.com/pl8wrds/pl8wrds/internal/solver"
)

func newHandlers(t *testing.T) *Handlers {
	t.Helper()
	st, err := corpus.LoadReader(strings.NewReader(`{"about":100,"ambulance":10,"cab":5}`))
	require.NoError(t, err)
	idx := solver.Build(st)

	scores := map[string][2]int{"about": {90, 40}, "ambulance": {60, 70}, "cab": {30, 20}}
	dict, wordToID := artifact.BuildDictionary(scores)

	plates := map[string]artifact.PlateRecord{
		"ABC": {
			Letters: []string{"A", "B", "C"},
			Solutions: map[string]int{
				wordToID["about"]:     55,
				wordToID["ambulance"]: 30,
			},
		},
	}

	return &Handlers{Index: idx, Dict: dict, WordToID: wordToID, PlatesByKey: plates}
}

func TestHandlers_Solve(t *testing.T) {
	h := newHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/solve/ABC", nil)
	rec := httptest.NewRecorder()
	h.Solve(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body solveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ABC", body.Plate)
	assert.Contains(t, body.Words, "ambulance")
}

func TestHandlers_Solve_BadPlate(t *testing.T) {
	h := newHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/solve/ab", nil)
	rec := httptest.NewRecorder()
	h.Solve(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_Score(t *testing.T) {
	h := newHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/score/ABC/about", nil)
	rec := httptest.NewRecorder()
	h.Score(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body scoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "about", body.Word)
	assert.GreaterOrEqual(t, body.Ensemble, 0)
}

func TestHandlers_Score_NotASolution(t *testing.T) {
	h := newHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/score/ABC/cab", nil)
	rec := httptest.NewRecorder()
	h.Score(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlers_Plates(t *testing.T) {
	h := newHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/plates/ABC", nil)
	rec := httptest.NewRecorder()
	h.Plates(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body plateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.SolutionCount)
}

func TestHandlers_Plates_NotFound(t *testing.T) {
	h := newHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/plates/ZZZ", nil)
	rec := httptest.NewRecorder()
	h.Plates(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlers_Healthz(t *testing.T) {
	h := newHandlers(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Healthz(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
