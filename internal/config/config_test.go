package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"DATASET_PATH", "EVAL_MODELS", "PROMPT_PATH", "TARGET_VISIT_YEAR", "USE_MOCK_LLM", "LLM_TIMEOUT_SEC"} {
		t.Setenv(k, "")
	}
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "dataset.json", cfg.DatasetPath)
	assert.Equal(t, []string{"gpt-4.1-mini"}, cfg.Models)
	assert.Equal(t, []Prompt{{Name: "default", Path: "prompt.txt"}}, cfg.Prompts)
	assert.Equal(t, 2026, cfg.TargetVisitYear)
	assert.False(t, cfg.UseMockLLM)
	assert.Equal(t, 25*time.Second, cfg.LLMTimeout())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("EVAL_MODELS", "gpt-4.1-mini, gpt-4o ,,")
	t.Setenv("TARGET_VISIT_YEAR", "2027")
	t.Setenv("LLM_TIMEOUT_SEC", " 30 ")
	t.Setenv("USE_MOCK_LLM", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"gpt-4.1-mini", "gpt-4o"}, cfg.Models)
	assert.Equal(t, 2027, cfg.TargetVisitYear)
	assert.Equal(t, 30, cfg.LLMTimeoutSec)
	assert.True(t, cfg.UseMockLLM)
}

func TestFromEnv_MalformedInt(t *testing.T) {
	t.Setenv("TARGET_VISIT_YEAR", "20x6")
	t.Setenv("LLM_TIMEOUT_SEC", "not-a-number")
	t.Setenv("LLM_MAX_RETRY_SEC", "")

	cfg, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `TARGET_VISIT_YEAR="20x6"`)
	assert.Contains(t, err.Error(), "LLM_TIMEOUT_SEC")
	assert.NotContains(t, err.Error(), "LLM_MAX_RETRY_SEC")
	assert.Equal(t, 2026, cfg.TargetVisitYear)

	t.Setenv("EVAL_CONFIG", "")
	t.Setenv("USE_MOCK_LLM", "true")
	_, err = Load()
	assert.ErrorContains(t, err, "TARGET_VISIT_YEAR")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
models = ["gpt-4o", "gpt-4.1"]
target_visit_year = 2025
use_mock_llm = true

[[prompts]]
name = "strict"
path = "prompts/strict.txt"

[[prompts]]
path = "prompts/loose.txt"
`), 0o600))

	cfg := Config{DatasetPath: "dataset.json", Models: []string{"x"}}
	require.NoError(t, cfg.LoadFile(path))
	assert.Equal(t, "dataset.json", cfg.DatasetPath, "unset keys keep their value")
	assert.Equal(t, []string{"gpt-4o", "gpt-4.1"}, cfg.Models)
	assert.Equal(t, 2025, cfg.TargetVisitYear)
	assert.True(t, cfg.UseMockLLM)
	require.Len(t, cfg.Prompts, 2)
	assert.Equal(t, "strict", cfg.Prompts[0].Name)
	assert.Equal(t, "prompt-2", cfg.Prompts[1].Name)
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eval.toml")
	require.NoError(t, os.WriteFile(path, []byte("models = [unterminated"), 0o600))
	cfg := Config{}
	assert.Error(t, cfg.LoadFile(path))
}

func TestValidate(t *testing.T) {
	valid := Config{
		Models:          []string{"m"},
		Prompts:         []Prompt{{Name: "p", Path: "p.txt"}},
		UseMockLLM:      true,
		LLMTimeoutSec:   1,
		LLMMaxRetrySec:  1,
		TargetVisitYear: 2026,
	}
	require.NoError(t, valid.Validate())

	noModels := valid
	noModels.Models = nil
	assert.Error(t, noModels.Validate())

	noGateway := valid
	noGateway.UseMockLLM = false
	assert.Error(t, noGateway.Validate())
	noGateway.LLMGatewayURL = "http://llm"
	noGateway.LLMAPIKey = "k"
	assert.NoError(t, noGateway.Validate())

	badTimeout := valid
	badTimeout.LLMTimeoutSec = 0
	assert.Error(t, badTimeout.Validate())

	noPath := valid
	noPath.Prompts = []Prompt{{Name: "p"}}
	assert.Error(t, noPath.Validate())
}
