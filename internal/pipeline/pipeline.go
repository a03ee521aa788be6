// Package pipeline runs the offline precomputation sweep described in
// spec §4.8: score every word against every plate in a universe using a
// fixed worker pool, checkpoint progress so a crashed run can resume,
// and hand the finished tallies to internal/artifact for encoding.
//
// The worker/progress-logging shape is grounded in the coatyio-dda
// worker component (components/worker.go): a pool identified by a
// run id, fed by a channel, shut down cooperatively via context
// cancellation. The checkpoint/resume cadence and its zerolog
// reporting follow czcorpus-scollex's batch precalc pass
// (engine/precalc.go), which logs every chunk of rows it commits.
package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/kelindar/binary"
	"github.com/rs/zerolog"

	"github.com/pl8wrds/pl8wrds/internal/corpus"
	"github.com/pl8wrds/pl8wrds/internal/models"
	"github.com/pl8wrds/pl8wrds/internal/scoring"
	"github.com/pl8wrds/pl8wrds/internal/solver"
)

// Options configures a Run.
type Options struct {
	Workers         int           // goroutine count; <=0 means runtime.NumCPU()
	Universe        models.PlateUniverse
	Weights         scoring.Weights
	CheckpointDir   string        // empty disables checkpointing
	CheckpointEvery int           // plates between checkpoints; <=0 means 500
}

// PlateResult is one plate's worth of scored solutions, keyed by word.
type PlateResult struct {
	Plate     string
	Solutions map[string]scoring.Solution
}

// Checkpoint is the resumable state persisted to CheckpointDir. It is
// encoded with kelindar/binary, which gives a checkpoint file that is
// cheap to write every CheckpointEvery plates without a JSON marshal
// pass.
type Checkpoint struct {
	RunID     string
	Completed []string // plates already scored, in completion order
}

// Run executes the sweep over opts.Universe, returning one PlateResult
// per plate. It is safe to cancel ctx; Run then returns early with
// whatever plates finished, plus a non-nil error wrapping
// context.Canceled.
type Run struct {
	idx   *solver.Index
	vocab *scoring.VocabularyScorer
	ortho *scoring.OrthographicScorer
	info  *scoring.InformationScorer
	opts  Options
	runID string
	log   zerolog.Logger

	// vocabCache and orthoCache are the sole mutable shared state workers
	// touch concurrently: vocabulary and orthographic scores depend only
	// on the word, not the plate, so each unique word is scored at most
	// once across the whole run no matter how many plates it solves for.
	vocabCache sync.Map // word -> scoring.ComponentStatus
	orthoCache sync.Map // word -> scoring.ComponentStatus
}

// NewRun builds a Run from a loaded corpus and the two trained models
// (spec §4.7's orthographic and information models). The solver index
// and information model must already be built over the same corpus.
func NewRun(store *corpus.Store, idx *solver.Index, ortho *scoring.OrthographicModel, info *scoring.InformationModel, opts Options) *Run {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.CheckpointEvery <= 0 {
		opts.CheckpointEvery = 500
	}
	if opts.Weights == (scoring.Weights{}) {
		opts.Weights = scoring.DefaultWeights()
	}
	return &Run{
		idx:   idx,
		vocab: scoring.NewVocabularyScorer(store),
		ortho: scoring.NewOrthographicScorer(ortho),
		info:  scoring.NewInformationScorer(info),
		opts:  opts,
		runID: uuid.NewString(),
		log:   zerolog.New(os.Stderr).With().Timestamp().Str("run_id", "").Logger(),
	}
}

// Execute runs the sweep to completion or until ctx is cancelled.
func (r *Run) Execute(ctx context.Context) ([]PlateResult, error) {
	r.log = r.log.With().Str("run_id", r.runID).Logger()
	plates := r.opts.Universe.All()

	resume := r.loadCheckpoint()
	done := make(map[string]bool, len(resume))
	for _, p := range resume {
		done[p] = true
	}
	pending := make([]string, 0, len(plates))
	for _, p := range plates {
		if !done[p] {
			pending = append(pending, p)
		}
	}
	if len(resume) > 0 {
		r.log.Info().Int("resumed_plates", len(resume)).Int("remaining", len(pending)).Msg("resuming precomputation run")
	}

	type job struct {
		plate string
	}
	type outcome struct {
		result PlateResult
		err    error
	}

	jobs := make(chan job)
	results := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < r.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res, err := r.scorePlate(j.plate)
				select {
				case results <- outcome{result: res, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, p := range pending {
			select {
			case jobs <- job{plate: p}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]PlateResult, 0, len(plates))
	completed := append([]string(nil), resume...)
	count := 0

	for o := range results {
		if o.err != nil {
			return out, fmt.Errorf("score plate %q: %w", o.result.Plate, o.err)
		}
		out = append(out, o.result)
		completed = append(completed, o.result.Plate)
		count++

		if count%r.opts.CheckpointEvery == 0 {
			r.saveCheckpoint(completed)
			r.log.Info().Int("completed", len(completed)).Int("total", len(plates)).Msg("checkpoint written")
		}
	}

	select {
	case <-ctx.Done():
		r.saveCheckpoint(completed)
		return out, fmt.Errorf("precomputation cancelled: %w", ctx.Err())
	default:
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Plate < out[j].Plate })
	r.log.Info().Int("plates", len(out)).Msg("precomputation run complete")
	return out, nil
}

func (r *Run) scorePlate(plate string) (PlateResult, error) {
	res, err := solver.Solve(r.idx, plate, solver.Options{})
	if err != nil {
		return PlateResult{Plate: plate}, err
	}

	solutions := make(map[string]scoring.Solution, len(res.Words))
	for _, word := range res.Words {
		vocabStatus := r.vocabScore(word)
		orthoStatus := r.orthoScore(word)
		infoScore, iErr := r.info.Score(plate, word)
		infoStatus := scoring.ComponentStatus{Score: infoScore, Failed: iErr != nil}

		ensemble, band, confidence, cErr := scoring.Combine(vocabStatus, infoStatus, orthoStatus, r.opts.Weights)
		if cErr != nil {
			continue
		}

		solutions[word] = scoring.Solution{
			Word:          word,
			Ensemble:      ensemble,
			Band:          band,
			Vocabulary:    vocabStatus,
			Information:   infoStatus,
			Orthographic:  orthoStatus,
			Confidence:    confidence,
		}
	}
	return PlateResult{Plate: plate, Solutions: solutions}, nil
}

// vocabScore returns word's memoized vocabulary score, computing it on
// first request. Concurrent callers for the same word may race into
// r.vocab.Score once; LoadOrStore resolves the race to a single
// winning value rather than serializing on a lock.
func (r *Run) vocabScore(word string) scoring.ComponentStatus {
	if v, ok := r.vocabCache.Load(word); ok {
		return v.(scoring.ComponentStatus)
	}
	score, err := r.vocab.Score(word)
	status := scoring.ComponentStatus{Score: score.Combined, Failed: err != nil}
	actual, _ := r.vocabCache.LoadOrStore(word, status)
	return actual.(scoring.ComponentStatus)
}

// orthoScore returns word's memoized orthographic score, computing it
// on first request. See vocabScore for the memoization strategy.
func (r *Run) orthoScore(word string) scoring.ComponentStatus {
	if v, ok := r.orthoCache.Load(word); ok {
		return v.(scoring.ComponentStatus)
	}
	status := scoring.ComponentStatus{Score: r.ortho.Score(word)}
	actual, _ := r.orthoCache.LoadOrStore(word, status)
	return actual.(scoring.ComponentStatus)
}

func (r *Run) checkpointPath() string {
	if r.opts.CheckpointDir == "" {
		return ""
	}
	return filepath.Join(r.opts.CheckpointDir, "pl8wrds_checkpoint.bin")
}

func (r *Run) loadCheckpoint() []string {
	path := r.checkpointPath()
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var cp Checkpoint
	if err := binary.Unmarshal(data, &cp); err != nil {
		r.log.Warn().Err(err).Str("path", path).Msg("discarding unreadable checkpoint")
		return nil
	}
	return cp.Completed
}

func (r *Run) saveCheckpoint(completed []string) {
	path := r.checkpointPath()
	if path == "" {
		return
	}
	if err := os.MkdirAll(r.opts.CheckpointDir, 0o755); err != nil {
		r.log.Warn().Err(err).Msg("failed to create checkpoint dir")
		return
	}
	cp := Checkpoint{RunID: r.runID, Completed: completed}
	data, err := binary.Marshal(cp)
	if err != nil {
		r.log.Warn().Err(err).Msg("failed to encode checkpoint")
		return
	}

	tmp := path + ".tmp-" + hex.EncodeToString([]byte(r.runID))[:8]
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		r.log.Warn().Err(err).Msg("failed to write checkpoint tmp file")
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		r.log.Warn().Err(err).Msg("failed to rename checkpoint into place")
	}
}
