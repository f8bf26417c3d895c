// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package config loads the JSON-driven configuration shared by the
// cmd/align and cmd/assess binaries, following the same
// ReadConfig(path)-decodes-into-a-struct convention as
// utils.Config/utils.ReadConfig in the original Muscato tool.
package config

import (
	"encoding/json"
	"os"
)

// Config holds every tunable for a run of the matcher and its
// surrounding programs.
type Config struct {
	// Edit model.
	MaxErrors int
	IndelCost int

	// Inputs.
	ReferenceFileName string
	ReadFileNames     []string

	// Outputs and bookkeeping.
	ResultsFileName string
	LogDir          string
	TempDir         string
	CacheDir        string

	// The maximum number of batches run concurrently; defaults to
	// runtime.NumCPU() when zero, mirroring muscato's own
	// MaxConfirmProcs/MaxMergeProcs fields.
	Concurrency int

	// Assessment.
	AssessSampleSize int

	// If true, temporary files are not removed upon program
	// completion, exactly as in the teacher's NoCleanTmp field.
	NoCleanTmp bool

	// If true, a pprof CPU profile is written alongside the logs,
	// mirroring muscato's CPUProfile field.
	CPUProfile bool

	// If true, .sz read inputs are decompressed through an external
	// scipipe-orchestrated sztool pipeline before loading, mirroring
	// muscato's own scipipe-based prepReads/sortWindows stages.
	Pipeline bool
}

// Default fills in the zero-value defaults used when a field is
// absent from the JSON config or from command-line flags.
func Default() *Config {
	return &Config{
		MaxErrors: 2,
		IndelCost: 1,
		LogDir:    ".",
		TempDir:   "",
		CacheDir:  ".align-cache",
	}
}

// ReadConfig decodes a JSON configuration file, starting from
// Default() so unset fields keep sane values.
func ReadConfig(filename string) (*Config, error) {
	fid, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fid.Close()

	cfg := Default()
	dec := json.NewDecoder(fid)
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
