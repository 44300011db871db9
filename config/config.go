// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/jobtrail/ai"
	"github.com/poiesic/jobtrail/rules"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "JOBTRAIL_"

// Config is the complete application configuration.
type Config struct {
	DataDir  string         `yaml:"data_dir" validate:"required"`
	Source   SourceConfig   `yaml:"source"`
	AI       AIConfig       `yaml:"ai"`
	Rules    RulesConfig    `yaml:"rules"`
	Query    QueryConfig    `yaml:"query"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Log      LogConfig      `yaml:"log"`
}

// SourceConfig selects the mailbox and the fetch window.
type SourceConfig struct {
	Filter           string `yaml:"filter"`
	CredentialsFile  string `yaml:"credentials_file"`
	TokenFile        string `yaml:"token_file"`
	User             string `yaml:"user"`
	MaxResults       int    `yaml:"max_results" validate:"gte=0"`
	IncludeSpamTrash bool   `yaml:"include_spam_trash"`
	Account          int    `yaml:"account" validate:"gte=0"`
}

// AIConfig mirrors ai.Config.
type AIConfig struct {
	EmbeddingHost     string  `yaml:"embedding_host" validate:"required,url"`
	GenerationHost    string  `yaml:"generation_host" validate:"required,url"`
	EmbeddingModel    string  `yaml:"embedding_model" validate:"required"`
	GenerationModel   string  `yaml:"generation_model" validate:"required"`
	APIKey            string  `yaml:"api_key"`
	Temperature       float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	ClassifierBackend string  `yaml:"classifier" validate:"oneof=http llm"`
	ScorerURL         string  `yaml:"scorer_url" validate:"required_if=ClassifierBackend http"`
	ScorerToken       string  `yaml:"scorer_token"`
	ExtractAttributes bool    `yaml:"extract_attributes"`
}

// RulesConfig tunes the decision layer.
type RulesConfig struct {
	// Threshold overrides the threshold of the rules file.
	Threshold float64 `yaml:"threshold" validate:"gte=0,lte=1"`

	// File is an optional YAML file replacing the built-in rule lists.
	File string `yaml:"file"`
}

// QueryConfig controls retrieval breadth.
type QueryConfig struct {
	K int `yaml:"k" validate:"gte=1"`
}

// PipelineConfig controls pipeline concurrency and scheduling.
type PipelineConfig struct {
	PoolSize      int           `yaml:"pool_size" validate:"gte=1"`
	WatchInterval time.Duration `yaml:"watch_interval" validate:"gte=1s"`
	BatchSize     int           `yaml:"reembed_batch_size" validate:"gte=1"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		DataDir: "data",
		Source: SourceConfig{
			Filter:          "newer_than:30d",
			CredentialsFile: "credentials.json",
			TokenFile:       "token.json",
			User:            "me",
		},
		AI: AIConfig{
			EmbeddingHost:     aiDefaults.EmbeddingHost,
			GenerationHost:    aiDefaults.GenerationHost,
			EmbeddingModel:    aiDefaults.EmbeddingModel,
			GenerationModel:   aiDefaults.GenerationModel,
			APIKey:            aiDefaults.APIKey,
			Temperature:       aiDefaults.Temperature,
			ClassifierBackend: aiDefaults.ClassifierBackend,
			ScorerURL:         aiDefaults.ScorerURL,
		},
		Rules: RulesConfig{Threshold: rules.DefaultConfig().Threshold},
		Query: QueryConfig{K: 4},
		Pipeline: PipelineConfig{
			PoolSize:      4,
			WatchInterval: time.Minute,
			BatchSize:     100,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty), envFiles (".env" when none are given; missing files
// are ignored) and the process environment. The result is validated.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// Load never overrides variables already set in the environment.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", f, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from JOBTRAIL_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"DATA_DIR":         &c.DataDir,
		"FILTER":           &c.Source.Filter,
		"CREDENTIALS_FILE": &c.Source.CredentialsFile,
		"TOKEN_FILE":       &c.Source.TokenFile,
		"EMBEDDING_HOST":   &c.AI.EmbeddingHost,
		"GENERATION_HOST":  &c.AI.GenerationHost,
		"EMBEDDING_MODEL":  &c.AI.EmbeddingModel,
		"GENERATION_MODEL": &c.AI.GenerationModel,
		"API_KEY":          &c.AI.APIKey,
		"CLASSIFIER":       &c.AI.ClassifierBackend,
		"SCORER_URL":       &c.AI.ScorerURL,
		"SCORER_TOKEN":     &c.AI.ScorerToken,
		"RULES_FILE":       &c.Rules.File,
		"LOG_LEVEL":        &c.Log.Level,
		"LOG_FORMAT":       &c.Log.Format,
	}
	for name, field := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*field = v
		}
	}

	if v, ok := lookup(EnvPrefix + "HOST"); ok {
		c.AI.EmbeddingHost = v
		c.AI.GenerationHost = v
	}

	var errs []error
	if v, ok := lookup(EnvPrefix + "THRESHOLD"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %sTHRESHOLD=%q", ErrInvalidEnv, EnvPrefix, v))
		} else {
			c.Rules.Threshold = f
		}
	}
	ints := map[string]*int{
		"QUERY_K":     &c.Query.K,
		"MAX_RESULTS": &c.Source.MaxResults,
		"POOL_SIZE":   &c.Pipeline.PoolSize,
	}
	for name, field := range ints {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s%s=%q", ErrInvalidEnv, EnvPrefix, name, v))
				continue
			}
			*field = n
		}
	}
	if v, ok := lookup(EnvPrefix + "WATCH_INTERVAL"); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %sWATCH_INTERVAL=%q", ErrInvalidEnv, EnvPrefix, v))
		} else {
			c.Pipeline.WatchInterval = d
		}
	}
	return errors.Join(errs...)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its constraints.
func (c *Config) Validate() error {
	c.AI.ClassifierBackend = strings.ToLower(strings.TrimSpace(c.AI.ClassifierBackend))
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// AIConfig returns the settings as an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithGenerationHost(c.AI.GenerationHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithGenerationModel(c.AI.GenerationModel),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithTemperature(c.AI.Temperature),
		ai.WithClassifierBackend(c.AI.ClassifierBackend),
		ai.WithScorerURL(c.AI.ScorerURL),
		ai.WithScorerToken(c.AI.ScorerToken),
	)
}

// RulesConfig returns the decision rules: the rules file (or the built-in
// lists) with the configured threshold.
func (c *Config) RulesConfig() (*rules.Config, error) {
	rc := rules.DefaultConfig()
	if c.Rules.File != "" {
		loaded, err := rules.LoadConfig(c.Rules.File)
		if err != nil {
			return nil, err
		}
		rc = loaded
	}
	rc.Threshold = c.Rules.Threshold
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	return rc, nil
}
