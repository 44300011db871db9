package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func envMap(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.2, cfg.Rules.Threshold)
	assert.Equal(t, 4, cfg.Query.K)
	assert.Equal(t, "http", cfg.AI.ClassifierBackend)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, "jobtrail.yaml", `
data_dir: /var/lib/jobtrail
ai:
  classifier: llm
  generation_model: qwen3
rules:
  threshold: 0.5
query:
  k: 6
pipeline:
  watch_interval: 10m
`)
	envFile := writeFile(t, ".env", "JOBTRAIL_QUERY_K=8\n")
	t.Setenv("JOBTRAIL_THRESHOLD", "0.35")
	// The env file only fills unset variables; register a restore, then unset.
	t.Setenv("JOBTRAIL_QUERY_K", "")
	require.NoError(t, os.Unsetenv("JOBTRAIL_QUERY_K"))

	cfg, err := Load(path, envFile)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/jobtrail", cfg.DataDir)
	assert.Equal(t, "llm", cfg.AI.ClassifierBackend)
	assert.Equal(t, "qwen3", cfg.AI.GenerationModel)
	assert.Equal(t, "embeddinggemma", cfg.AI.EmbeddingModel)
	assert.Equal(t, 0.35, cfg.Rules.Threshold)
	assert.Equal(t, 8, cfg.Query.K)
	assert.Equal(t, 10*time.Minute, cfg.Pipeline.WatchInterval)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, Default().DataDir, cfg.DataDir)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.yaml", "query: [1, 2"))
		assert.Error(t, err)
	})

	t.Run("threshold out of range", func(t *testing.T) {
		_, err := Load(writeFile(t, "c.yaml", "rules:\n  threshold: 1.5\n"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.ErrorContains(t, err, "Threshold")
	})
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"JOBTRAIL_HOST":           "http://gpu:8080/v1",
		"JOBTRAIL_CLASSIFIER":     "LLM",
		"JOBTRAIL_POOL_SIZE":      "9",
		"JOBTRAIL_WATCH_INTERVAL": "90s",
		"JOBTRAIL_LOG_FORMAT":     "json",
	}))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://gpu:8080/v1", cfg.AI.EmbeddingHost)
	assert.Equal(t, "http://gpu:8080/v1", cfg.AI.GenerationHost)
	assert.Equal(t, "llm", cfg.AI.ClassifierBackend)
	assert.Equal(t, 9, cfg.Pipeline.PoolSize)
	assert.Equal(t, 90*time.Second, cfg.Pipeline.WatchInterval)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"JOBTRAIL_THRESHOLD":      "high",
		"JOBTRAIL_QUERY_K":        "many",
		"JOBTRAIL_WATCH_INTERVAL": "often",
	}))
	assert.ErrorIs(t, err, ErrInvalidEnv)
	assert.ErrorContains(t, err, "JOBTRAIL_QUERY_K")
	assert.Equal(t, 0.2, cfg.Rules.Threshold)
	assert.Equal(t, 4, cfg.Query.K)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown classifier", func(c *Config) { c.AI.ClassifierBackend = "svm" }},
		{"zero k", func(c *Config) { c.Query.K = 0 }},
		{"negative threshold", func(c *Config) { c.Rules.Threshold = -0.1 }},
		{"bad host", func(c *Config) { c.AI.EmbeddingHost = "not a url" }},
		{"missing scorer", func(c *Config) { c.AI.ScorerURL = "" }},
		{"short watch interval", func(c *Config) { c.Pipeline.WatchInterval = time.Millisecond }},
		{"log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"no data dir", func(c *Config) { c.DataDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}

	t.Run("scorer optional for llm backend", func(t *testing.T) {
		cfg := Default()
		cfg.AI.ClassifierBackend = "llm"
		cfg.AI.ScorerURL = ""
		assert.NoError(t, cfg.Validate())
	})
}

func TestAIConfig(t *testing.T) {
	cfg := Default()
	cfg.AI.ScorerToken = "secret"
	cfg.AI.ClassifierBackend = "llm"
	aiCfg := cfg.AIConfig()
	assert.Equal(t, cfg.AI.EmbeddingModel, aiCfg.EmbeddingModel)
	assert.Equal(t, "secret", aiCfg.ScorerToken)
	assert.Equal(t, "llm", aiCfg.ClassifierBackend)
}

func TestRulesConfig(t *testing.T) {
	t.Run("built-in lists", func(t *testing.T) {
		cfg := Default()
		cfg.Rules.Threshold = 0.4
		rc, err := cfg.RulesConfig()
		require.NoError(t, err)
		assert.Equal(t, 0.4, rc.Threshold)
		assert.NotEmpty(t, rc.ApplicationPhrases)
	})

	t.Run("missing rules file falls back", func(t *testing.T) {
		cfg := Default()
		cfg.Rules.File = filepath.Join(t.TempDir(), "rules.yaml")
		rc, err := cfg.RulesConfig()
		require.NoError(t, err)
		assert.Equal(t, 0.2, rc.Threshold)
	})
}
