package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	HiddenSize    int     `yaml:"hidden_size"`
	Epochs        int     `yaml:"epochs"`
	MiniBatchSize int     `yaml:"mini_batch_size"`
	Eta           float64 `yaml:"eta"`
	Seed          int64   `yaml:"seed"`
	NumWorkers    int     `yaml:"num_workers"`
	LogEvery      int     `yaml:"log_every"`

	TrainImages string `yaml:"train_images"`
	TrainLabels string `yaml:"train_labels"`
	TestImages  string `yaml:"test_images"`
	TestLabels  string `yaml:"test_labels"`
	TrainShards string `yaml:"train_shards"`
	TestShards  string `yaml:"test_shards"`

	MaxTrain       int    `yaml:"max_train"`
	MaxTest        int    `yaml:"max_test"`
	ValidationSize int    `yaml:"validation_size"`
	Plot           string `yaml:"plot"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	HiddenSize    int
	Epochs        int
	MiniBatchSize int
	Eta           float64
	Seed          int64
	NumWorkers    int
	LogEvery      int
	TrainShards   string
	TestShards    string
	Plot          string
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		HiddenSize:    60,
		Epochs:        30,
		MiniBatchSize: 20,
		Eta:           0.3,
		NumWorkers:    1,
		LogEvery:      1,
	}
}

// Load reads a Config from YAML on top of Default. Unknown keys are
// rejected. The result is not validated; call Validate after applying
// overrides.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.HiddenSize > 0 {
		c.HiddenSize = o.HiddenSize
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.MiniBatchSize > 0 {
		c.MiniBatchSize = o.MiniBatchSize
	}
	if o.Eta > 0 {
		c.Eta = o.Eta
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.NumWorkers > 0 {
		c.NumWorkers = o.NumWorkers
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.TrainShards != "" {
		c.TrainShards = o.TrainShards
		c.TrainImages, c.TrainLabels = "", ""
	}
	if o.TestShards != "" {
		c.TestShards = o.TestShards
		c.TestImages, c.TestLabels = "", ""
	}
	if o.Plot != "" {
		c.Plot = o.Plot
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.HiddenSize <= 0 {
		return fmt.Errorf("hidden_size must be > 0 (got %d)", c.HiddenSize)
	}
	if c.Epochs < 0 {
		return fmt.Errorf("epochs must be >= 0 (got %d)", c.Epochs)
	}
	if c.MiniBatchSize <= 0 {
		return fmt.Errorf("mini_batch_size must be > 0 (got %d)", c.MiniBatchSize)
	}
	if !(c.Eta > 0) {
		return fmt.Errorf("eta must be > 0 (got %v)", c.Eta)
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("num_workers must be >= 0 (got %d)", c.NumWorkers)
	}
	if c.MaxTrain < 0 || c.MaxTest < 0 || c.ValidationSize < 0 {
		return errors.New("max_train, max_test and validation_size must be >= 0")
	}
	if err := checkSource("train", c.TrainImages, c.TrainLabels, c.TrainShards); err != nil {
		return err
	}
	if err := checkSource("test", c.TestImages, c.TestLabels, c.TestShards); err != nil {
		return err
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 1
	}
	return nil
}

func checkSource(name, images, labels, shards string) error {
	idx := images != "" || labels != ""
	switch {
	case idx && shards != "":
		return fmt.Errorf("%s data: set either %s_images/%s_labels or %s_shards, not both", name, name, name, name)
	case idx && (images == "" || labels == ""):
		return fmt.Errorf("%s data: both %s_images and %s_labels must be set", name, name, name)
	case !idx && shards == "":
		return fmt.Errorf("%s data: no source configured", name)
	}
	return nil
}
