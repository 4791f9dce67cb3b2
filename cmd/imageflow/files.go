package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/imageflow/agent"
	"github.com/BaSui01/imageflow/config"
	"github.com/BaSui01/imageflow/types"
)

// batchFile is the YAML form of a batch:
//
//	output_dir: ./generated/hero
//	parallel: true
//	max_concurrency: 3
//	delay: 2s
//	images:
//	  - id: hero
//	    prompt: modern office at sunrise
//	    filename: hero.webp
type batchFile struct {
	OutputDir      string                    `yaml:"output_dir"`
	Parallel       bool                      `yaml:"parallel"`
	MaxConcurrency *int                      `yaml:"max_concurrency"`
	Delay          *string                   `yaml:"delay"`
	Images         []types.GenerationRequest `yaml:"images"`
}

// loadBatchFile reads a batch file. Unset delay and max_concurrency fall
// back to rate_limit.delay and the default concurrency.
func loadBatchFile(path string, cfg *config.Config) (types.BatchSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.BatchSpec{}, fmt.Errorf("read batch file: %w", err)
	}

	var f batchFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return types.BatchSpec{}, fmt.Errorf("parse batch file: %w", err)
	}
	if len(f.Images) == 0 {
		return types.BatchSpec{}, fmt.Errorf("batch file %s has no images", path)
	}

	spec := types.BatchSpec{
		Requests:       f.Images,
		OutputDir:      f.OutputDir,
		Parallel:       f.Parallel,
		InterItemDelay: cfg.RateLimit.Delay,
		MaxConcurrency: types.DefaultMaxConcurrency,
	}
	if f.MaxConcurrency != nil {
		spec.MaxConcurrency = *f.MaxConcurrency
	}
	if f.Delay != nil {
		d, err := time.ParseDuration(*f.Delay)
		if err != nil {
			return types.BatchSpec{}, fmt.Errorf("parse delay %q: %w", *f.Delay, err)
		}
		spec.InterItemDelay = d
	}
	return spec, nil
}

type chainFile struct {
	Steps []agent.ChainStep `yaml:"steps"`
}

// loadChainFile reads a chain file:
//
//	steps:
//	  - tool: enhance_prompt
//	    params: {base_prompt: a red fox}
func loadChainFile(path string) ([]agent.ChainStep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read chain file: %w", err)
	}

	var f chainFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse chain file: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("chain file %s has no steps", path)
	}
	return f.Steps, nil
}
