// Command pl8wrds is the precomputation and model-build tool for the
// PL8WRDS license-plate word game (spec §6's CLI surface). Subcommand
// dispatch follows the teacher's scollex.go: a generalUsage closure, one
// flag.FlagSet per subcommand, os.Args[1] selects the action.
package main

import (
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pl8wrds/pl8wrds/internal/artifact"
	"github.com/pl8wrds/pl8wrds/internal/cnf"
	"github.com/pl8wrds/pl8wrds/internal/corpus"
	"github.com/pl8wrds/pl8wrds/internal/models"
	"github.com/pl8wrds/pl8wrds/internal/pipeline"
	"github.com/pl8wrds/pl8wrds/internal/scoring"
	"github.com/pl8wrds/pl8wrds/internal/solver"
)

var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

const (
	exitOK      = 0
	exitBadInput = 2
	exitIOError  = 3
)

func generalUsage() {
	fmt.Fprintf(os.Stderr, "pl8wrds - license-plate word game precomputation tool\n\n")
	fmt.Fprintf(os.Stderr, "Usage:\t%s build-models --corpus <path> --out <dir>\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "\t%s precompute --corpus <path> --models <dir> --out <dir>\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "\t%s solve <PLATE>\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "\t%s score <word> <PLATE>\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "\t%s inspect <artifact.json.gz>\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "\t%s version\n", filepath.Base(os.Args[0]))
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		generalUsage()
		os.Exit(exitBadInput)
	}

	action := os.Args[1]
	var code int
	switch action {
	case "version":
		fmt.Printf("pl8wrds %s\nbuild date: %s\nlast commit: %s\n", version, buildDate, gitCommit)
		code = exitOK
	case "build-models":
		code = runBuildModels(os.Args[2:])
	case "precompute":
		code = runPrecompute(os.Args[2:])
	case "solve":
		code = runSolve(os.Args[2:])
	case "score":
		code = runScore(os.Args[2:])
	case "inspect":
		code = runInspect(os.Args[2:])
	default:
		generalUsage()
		code = exitBadInput
	}
	os.Exit(code)
}

// configFromArgs looks for a --config flag ahead of the rest of a
// subcommand's flags (config values seed the flag defaults below, so
// it must be resolved before the owning flag.FlagSet is built) and, if
// found, loads and validates it via internal/cnf.
func configFromArgs(args []string) *cnf.Conf {
	for i, a := range args {
		switch {
		case a == "--config" || a == "-config":
			if i+1 >= len(args) {
				return nil
			}
			c := cnf.LoadConfig(args[i+1])
			cnf.ValidateAndDefaults(c)
			return c
		case strings.HasPrefix(a, "--config="):
			c := cnf.LoadConfig(strings.TrimPrefix(a, "--config="))
			cnf.ValidateAndDefaults(c)
			return c
		case strings.HasPrefix(a, "-config="):
			c := cnf.LoadConfig(strings.TrimPrefix(a, "-config="))
			cnf.ValidateAndDefaults(c)
			return c
		}
	}
	return nil
}

func runBuildModels(args []string) int {
	conf := configFromArgs(args)

	fs := flag.NewFlagSet("build-models", flag.ExitOnError)
	fs.String("config", "", "optional path to a JSON config file (see internal/cnf.Conf)")

	corpusDflt, plateLenDflt := os.Getenv("PL8WRDS_CORPUS"), 3
	outDflt := "."
	if conf != nil {
		corpusDflt, plateLenDflt = conf.CorpusPath, conf.PlateLength
		if conf.ArtifactDir != "" {
			outDflt = conf.ArtifactDir
		}
	}

	corpusPath := fs.String("corpus", corpusDflt, "path to corpus JSON file")
	outDir := fs.String("out", outDflt, "directory to write model files into")
	plateLen := fs.Int("plate-length", plateLenDflt, "length of plates in the information model universe")
	fs.Parse(args)

	store, idx, ok := loadCorpusAndIndex(*corpusPath)
	if !ok {
		return exitBadInput
	}

	log.Info().Msg("building orthographic model")
	ortho := models.BuildOrthographic(store)

	log.Info().Int("plate_length", *plateLen).Msg("building information model")
	info := models.BuildInformation(idx, models.PlateUniverse{Length: *plateLen})

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Error().Err(err).Msg("failed to create output directory")
		return exitIOError
	}

	if err := writeJSONFile(filepath.Join(*outDir, "orthographic_model.json"), func(f *os.File) error {
		return models.SaveOrthographic(ortho, f)
	}); err != nil {
		return exitIOError
	}
	if err := writeJSONFile(filepath.Join(*outDir, "information_model.json"), func(f *os.File) error {
		return models.SaveInformation(info, f)
	}); err != nil {
		return exitIOError
	}

	log.Info().Str("out", *outDir).Msg("model files written")
	return exitOK
}

func runPrecompute(args []string) int {
	conf := configFromArgs(args)

	fs := flag.NewFlagSet("precompute", flag.ExitOnError)
	fs.String("config", "", "optional path to a JSON config file (see internal/cnf.Conf)")

	corpusDflt := os.Getenv("PL8WRDS_CORPUS")
	outDflt, checkpointDirDflt := ".", ""
	threadsDflt, plateLenDflt, checkpointEveryDflt := threadsFromEnv(), 3, 0
	weights := scoring.Weights{}
	if conf != nil {
		corpusDflt, threadsDflt, plateLenDflt = conf.CorpusPath, conf.Threads, conf.PlateLength
		checkpointDirDflt, checkpointEveryDflt = conf.CheckpointDir, conf.CheckpointEvery
		if conf.ArtifactDir != "" {
			outDflt = conf.ArtifactDir
		}
		weights = scoring.Weights{
			Vocabulary: conf.WeightVocabulary, Information: conf.WeightInformation, Orthographic: conf.WeightOrthographic,
		}
	}

	corpusPath := fs.String("corpus", corpusDflt, "path to corpus JSON file")
	modelsDir := fs.String("models", ".", "directory containing orthographic_model.json and information_model.json")
	outDir := fs.String("out", outDflt, "directory to write the artifact into")
	checkpointDir := fs.String("checkpoint-dir", checkpointDirDflt, "directory for resumable checkpoints (empty disables)")
	checkpointEvery := fs.Int("checkpoint-every", checkpointEveryDflt, "plates between checkpoints (0 uses the pipeline default)")
	threads := fs.Int("threads", threadsDflt, "worker goroutine count")
	plateLen := fs.Int("plate-length", plateLenDflt, "length of plates in the precomputed universe")
	fs.Parse(args)

	store, idx, ok := loadCorpusAndIndex(*corpusPath)
	if !ok {
		return exitBadInput
	}

	orthoFile, err := os.Open(filepath.Join(*modelsDir, "orthographic_model.json"))
	if err != nil {
		log.Error().Err(err).Msg("failed to open orthographic model")
		return exitIOError
	}
	defer orthoFile.Close()
	ortho, err := models.LoadOrthographic(orthoFile)
	if err != nil {
		log.Error().Err(err).Msg("failed to decode orthographic model")
		return exitBadInput
	}

	infoFile, err := os.Open(filepath.Join(*modelsDir, "information_model.json"))
	if err != nil {
		log.Error().Err(err).Msg("failed to open information model")
		return exitIOError
	}
	defer infoFile.Close()
	info, err := models.LoadInformation(infoFile)
	if err != nil {
		log.Error().Err(err).Msg("failed to decode information model")
		return exitBadInput
	}

	run := pipeline.NewRun(store, idx, ortho, info, pipeline.Options{
		Workers:         *threads,
		Universe:        models.PlateUniverse{Length: *plateLen},
		Weights:         weights,
		CheckpointDir:   *checkpointDir,
		CheckpointEvery: *checkpointEvery,
	})

	results, err := run.Execute(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("precomputation run failed")
		return exitIOError
	}

	corpusBytes, err := os.ReadFile(*corpusPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to read corpus for hashing")
		return exitIOError
	}
	sum := sha256.Sum256(corpusBytes)
	corpusHash := hex.EncodeToString(sum[:])
	generationDate := time.Now().UTC().Format(time.RFC3339)

	if err := writeArtifact(*outDir, store, results, corpusHash, generationDate); err != nil {
		log.Error().Err(err).Msg("failed to write artifact")
		return exitIOError
	}

	log.Info().Str("out", *outDir).Int("plates", len(results)).Msg("artifact written")
	return exitOK
}

func writeArtifact(outDir string, store *corpus.Store, results []pipeline.PlateResult, corpusHash, generationDate string) error {
	vocab := scoring.NewVocabularyScorer(store)

	type pair struct {
		word  string
		vocab int
		ortho int
	}
	seen := make(map[string]pair)
	for _, r := range results {
		for word, sol := range r.Solutions {
			if _, ok := seen[word]; !ok {
				vs, err := vocab.Score(word)
				if err != nil {
					continue
				}
				seen[word] = pair{word: word, vocab: vs.Combined, ortho: sol.Orthographic.Score}
			}
		}
	}

	scores := make(map[string][2]int, len(seen))
	for w, p := range seen {
		scores[w] = [2]int{p.vocab, p.ortho}
	}
	dict, wordToID := artifact.BuildDictionary(scores)

	plates := make([]artifact.PlateRecord, 0, len(results))
	totalSolutions := 0
	for _, r := range results {
		sols := make(map[string]int, len(r.Solutions))
		for word, sol := range r.Solutions {
			sols[wordToID[word]] = sol.Information.Score
		}
		totalSolutions += len(sols)
		plates = append(plates, artifact.PlateRecord{
			Letters:   strings.Split(r.Plate, ""),
			Solutions: sols,
		})
	}

	maxSolutions := 1
	for _, r := range results {
		if n := len(r.Solutions); n > maxSolutions {
			maxSolutions = n
		}
	}

	a := &artifact.Artifact{
		Metadata: artifact.Metadata{
			TotalPlates:    len(plates),
			TotalSolutions: totalSolutions,
			GenerationDate: generationDate,
			MaxSolutions:   maxSolutions,
			CorpusHash:     corpusHash,
		},
		Plates: plates,
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	gzFile, err := os.Create(filepath.Join(outDir, "pl8wrds_complete.json.gz.tmp"))
	if err != nil {
		return err
	}
	dictFile, err := os.Create(filepath.Join(outDir, "dictionary.json.tmp"))
	if err != nil {
		gzFile.Close()
		return err
	}
	if err := artifact.Encode(a, dict, gzFile, dictFile); err != nil {
		gzFile.Close()
		dictFile.Close()
		return err
	}
	if err := gzFile.Close(); err != nil {
		return err
	}
	if err := dictFile.Close(); err != nil {
		return err
	}
	if err := os.Rename(filepath.Join(outDir, "pl8wrds_complete.json.gz.tmp"), filepath.Join(outDir, "pl8wrds_complete.json.gz")); err != nil {
		return err
	}
	return os.Rename(filepath.Join(outDir, "dictionary.json.tmp"), filepath.Join(outDir, "dictionary.json"))
}

func runSolve(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: pl8wrds solve <PLATE>")
		return exitBadInput
	}
	corpusPath := os.Getenv("PL8WRDS_CORPUS")
	store, idx, ok := loadCorpusAndIndex(corpusPath)
	if !ok {
		return exitBadInput
	}
	res, err := solver.Solve(idx, strings.ToUpper(args[0]), solver.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitBadInput
	}
	_ = store
	for _, w := range res.Words {
		fmt.Println(w)
	}
	return exitOK
}

func runScore(args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: pl8wrds score <word> <PLATE>")
		return exitBadInput
	}
	word, plate := strings.ToLower(args[0]), strings.ToUpper(args[1])
	corpusPath := os.Getenv("PL8WRDS_CORPUS")
	store, idx, ok := loadCorpusAndIndex(corpusPath)
	if !ok {
		return exitBadInput
	}

	ortho := models.BuildOrthographic(store)
	info := models.BuildInformation(idx, models.PlateUniverse{Length: len(plate)})

	vocabScorer := scoring.NewVocabularyScorer(store)
	orthoScorer := scoring.NewOrthographicScorer(ortho)
	infoScorer := scoring.NewInformationScorer(info)

	vocabScore, vErr := vocabScorer.Score(word)
	infoScore, iErr := infoScorer.Score(plate, word)
	orthoScore := orthoScorer.Score(word)

	ensemble, band, confidence, err := scoring.Combine(
		scoring.ComponentStatus{Score: vocabScore.Combined, Failed: vErr != nil},
		scoring.ComponentStatus{Score: infoScore, Failed: iErr != nil},
		scoring.ComponentStatus{Score: orthoScore},
		scoring.DefaultWeights(),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitBadInput
	}

	fmt.Printf(`{"word":%q,"plate":%q,"vocabulary_score":%d,"information_score":%d,"orthographic_score":%d,"ensemble_score":%d,"band":%q,"confidence":%.3f}`+"\n",
		word, plate, vocabScore.Combined, infoScore, orthoScore, ensemble, band, confidence)
	return exitOK
}

func runInspect(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: pl8wrds inspect <artifact.json.gz>")
		return exitBadInput
	}
	f, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitIOError
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitBadInput
	}
	defer gr.Close()

	var a struct {
		Metadata artifact.Metadata `json:"metadata"`
	}
	if err := json.NewDecoder(gr).Decode(&a); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitBadInput
	}
	fmt.Printf("total_plates: %d\ntotal_solutions: %d\ngeneration_date: %s\nmax_solutions: %d\ncorpus_hash: %s\n",
		a.Metadata.TotalPlates, a.Metadata.TotalSolutions, a.Metadata.GenerationDate, a.Metadata.MaxSolutions, a.Metadata.CorpusHash)
	return exitOK
}

func loadCorpusAndIndex(path string) (*corpus.Store, *solver.Index, bool) {
	if path == "" {
		fmt.Fprintln(os.Stderr, "no corpus path given (set --corpus or PL8WRDS_CORPUS)")
		return nil, nil, false
	}
	store, err := corpus.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, false
	}
	return store, solver.Build(store), true
}

func writeJSONFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to create file")
		return err
	}
	defer f.Close()
	if err := write(f); err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to write file")
		return err
	}
	return nil
}

func threadsFromEnv() int {
	if n, err := strconv.Atoi(os.Getenv("PL8WRDS_THREADS")); err == nil && n > 0 {
		return n
	}
	return 0 // pipeline.NewRun defaults to runtime.NumCPU() when <=0
}
