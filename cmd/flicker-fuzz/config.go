package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the worker pool's on-disk configuration.
type Config struct {
	DescriptionPath string `yaml:"description_path"`
	CorpusDir       string `yaml:"corpus_dir"`
	HarnessPath     string `yaml:"harness_path"`
	CoverPath       string `yaml:"cover_path"`
	TimeoutMS       int64  `yaml:"timeout_ms"`
	MemLimitBytes   uint64 `yaml:"mem_limit_bytes"`
	NumWorkers      int    `yaml:"num_workers"`
	HTTPAddr        string `yaml:"http_addr"`

	Profiler struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"profiler"`

	Cloud struct {
		ProjectID      string `yaml:"project_id"`
		CoverageTopic  string `yaml:"coverage_topic"`
		CounterDataset string `yaml:"counter_dataset"`
		CounterTable   string `yaml:"counter_table"`
	} `yaml:"cloud"`
}

// LoadConfig reads and validates a Config from path, filling in defaults for
// anything the file leaves unset.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.DescriptionPath == "" {
		return nil, fmt.Errorf("config: description_path is required")
	}
	if cfg.HarnessPath == "" {
		return nil, fmt.Errorf("config: harness_path is required")
	}
	if cfg.CorpusDir == "" {
		cfg.CorpusDir = "corpus"
	}
	if cfg.TimeoutMS == 0 {
		cfg.TimeoutMS = 5000
	}
	if cfg.NumWorkers == 0 {
		cfg.NumWorkers = 1
	}
	return &cfg, nil
}
