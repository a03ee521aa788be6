package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pl8wrds/pl8wrds/internal/corpus"
	"github.com/pl8wrds/pl8wrds/internal/models"
	"github.com/pl8wrds/pl8wrds/internal/solver"
)

func setup(t *testing.T) (*corpus.Store, *solver.Index) {
	t.Helper()
	st, err := corpus.LoadReader(strings.NewReader(`{"about":100,"ambulance":10,"cab":5,"cabin":4,"arc":3}`))
	require.NoError(t, err)
	idx := solver.Build(st)
	return st, idx
}

func TestRun_Execute_ProducesAllPlates(t *testing.T) {
	st, idx := setup(t)
	ortho := models.BuildOrthographic(st)
	info := models.BuildInformation(idx, models.PlateUniverse{Length: 3})

	r := NewRun(st, idx, ortho, info, Options{Workers: 2, Universe: models.PlateUniverse{Length: 3}})
	results, err := r.Execute(context.Background())
	require.NoError(t, err)
	assert.Len(t, results, 26*26*26)
}

func TestRun_Execute_ScoresKnownSolution(t *testing.T) {
	st, idx := setup(t)
	ortho := models.BuildOrthographic(st)
	info := models.BuildInformation(idx, models.PlateUniverse{Length: 3})

	r := NewRun(st, idx, ortho, info, Options{Workers: 1, Universe: models.PlateUniverse{Length: 3}})
	results, err := r.Execute(context.Background())
	require.NoError(t, err)

	var abc *PlateResult
	for i := range results {
		if results[i].Plate == "ABC" {
			abc = &results[i]
			break
		}
	}
	require.NotNil(t, abc)
	sol, ok := abc.Solutions["ambulance"]
	require.True(t, ok)
	assert.GreaterOrEqual(t, sol.Ensemble, 0)
	assert.LessOrEqual(t, sol.Ensemble, 100)
}

func TestRun_Execute_WritesCheckpoint(t *testing.T) {
	st, idx := setup(t)
	ortho := models.BuildOrthographic(st)
	info := models.BuildInformation(idx, models.PlateUniverse{Length: 3})

	dir := t.TempDir()
	r := NewRun(st, idx, ortho, info, Options{
		Workers: 1, Universe: models.PlateUniverse{Length: 3},
		CheckpointDir: dir, CheckpointEvery: 100,
	})
	_, err := r.Execute(context.Background())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "pl8wrds_checkpoint.bin"))
	assert.NoError(t, err)
}

func TestRun_Execute_CancelledContext(t *testing.T) {
	st, idx := setup(t)
	ortho := models.BuildOrthographic(st)
	info := models.BuildInformation(idx, models.PlateUniverse{Length: 3})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRun(st, idx, ortho, info, Options{Workers: 1, Universe: models.PlateUniverse{Length: 3}})
	_, err := r.Execute(ctx)
	require.Error(t, err)
}
