// Package cnf loads and validates the PL8WRDS configuration file, with
// environment variable overrides for the two settings most often
// changed per-deployment. Structure and load/validate split follow
// czcorpus-scollex's cnf/conf.go.
package cnf

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

const (
	dfltThreads         = 4
	dfltCheckpointEvery = 500
	dfltPlateLength     = 3
	dfltListenAddress   = "127.0.0.1"
	dfltListenPort      = 8080
)

// Conf is the global configuration of the PL8WRDS build/serve tools.
type Conf struct {
	CorpusPath      string  `json:"corpusPath"`
	ArtifactDir     string  `json:"artifactDir"`
	CheckpointDir   string  `json:"checkpointDir"`
	CheckpointEvery int     `json:"checkpointEvery"`
	PlateLength     int     `json:"plateLength"`
	Threads         int     `json:"threads"`
	WeightVocabulary   float64 `json:"weightVocabulary"`
	WeightInformation  float64 `json:"weightInformation"`
	WeightOrthographic float64 `json:"weightOrthographic"`
	ListenAddress   string  `json:"listenAddress"`
	ListenPort      int     `json:"listenPort"`
	LogLevel        string  `json:"logLevel"`

	srcPath string
}

// GetSourcePath returns the path the config was loaded from.
func (conf *Conf) GetSourcePath() string {
	return conf.srcPath
}

// IsDebugMode reports whether verbose logging was requested.
func (conf *Conf) IsDebugMode() bool {
	return conf.LogLevel == "debug"
}

// LoadConfig reads and decodes the config file at path. It terminates
// the process on failure, matching the teacher's load-or-die CLI
// convention: a build tool with a broken config file has nothing
// useful to do.
func LoadConfig(path string) *Conf {
	if path == "" {
		log.Fatal().Msg("cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	var conf Conf
	conf.srcPath = path
	if err := json.Unmarshal(rawData, &conf); err != nil {
		log.Fatal().Err(err).Msg("cannot parse config")
	}
	return &conf
}

// ValidateAndDefaults fills in defaults for unset fields and applies
// the PL8WRDS_CORPUS / PL8WRDS_THREADS environment overrides, logging a
// warning for each substitution so a misconfigured deploy is visible in
// the startup log.
func ValidateAndDefaults(conf *Conf) {
	if v := os.Getenv("PL8WRDS_CORPUS"); v != "" {
		log.Warn().Str("corpusPath", v).Msg("overriding corpusPath from PL8WRDS_CORPUS")
		conf.CorpusPath = v
	}
	if v := os.Getenv("PL8WRDS_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			log.Warn().Int("threads", n).Msg("overriding threads from PL8WRDS_THREADS")
			conf.Threads = n
		} else {
			log.Warn().Str("value", v).Msg("ignoring malformed PL8WRDS_THREADS")
		}
	}

	if conf.CorpusPath == "" {
		log.Fatal().Msg("corpusPath must be set")
	}
	if conf.Threads <= 0 {
		conf.Threads = dfltThreads
		log.Warn().Int("threads", dfltThreads).Msg("threads not specified, using default")
	}
	if conf.CheckpointEvery <= 0 {
		conf.CheckpointEvery = dfltCheckpointEvery
	}
	if conf.PlateLength <= 0 {
		conf.PlateLength = dfltPlateLength
	}
	if conf.WeightVocabulary == 0 && conf.WeightInformation == 0 && conf.WeightOrthographic == 0 {
		conf.WeightVocabulary, conf.WeightInformation, conf.WeightOrthographic = 1, 1, 1
	}
	if conf.ListenAddress == "" {
		conf.ListenAddress = dfltListenAddress
	}
	if conf.ListenPort == 0 {
		conf.ListenPort = dfltListenPort
	}
	if conf.LogLevel == "" {
		conf.LogLevel = "info"
	}
}
