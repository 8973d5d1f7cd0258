// Package config reads evaluation settings from the environment and an
// optional TOML run file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Prompt is a named prompt template file.
type Prompt struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// Config holds everything cmd/eval and cmd/api need.
type Config struct {
	DatasetPath     string   `toml:"dataset_path"`
	GroundTruthPath string   `toml:"ground_truth_path"`
	ReportPath      string   `toml:"report_path"`
	Models          []string `toml:"models"`
	Prompts         []Prompt `toml:"prompts"`
	TargetVisitYear int      `toml:"target_visit_year"`

	LLMGatewayURL  string `toml:"-"`
	LLMAPIKey      string `toml:"-"`
	UseMockLLM     bool   `toml:"use_mock_llm"`
	LLMTimeoutSec  int    `toml:"llm_timeout_sec"`
	LLMMaxRetrySec int    `toml:"llm_max_retry_sec"`

	Port string `toml:"-"`
}

// FromEnv builds a Config from environment variables and defaults. Integer
// variables that do not parse are reported instead of silently defaulted.
func FromEnv() (Config, error) {
	var errs []error
	intVar := func(k string, def int) int {
		n, err := envInt(k, def)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}
	cfg := Config{
		DatasetPath:     envOr("DATASET_PATH", "dataset.json"),
		GroundTruthPath: envOr("GROUND_TRUTH_PATH", "ground_truth.json"),
		ReportPath:      envOr("REPORT_PATH", "eval_report.xlsx"),
		Models:          splitList(envOr("EVAL_MODELS", "gpt-4.1-mini")),
		Prompts:         []Prompt{{Name: "default", Path: envOr("PROMPT_PATH", "prompt.txt")}},
		TargetVisitYear: intVar("TARGET_VISIT_YEAR", 2026),
		LLMGatewayURL:   os.Getenv("LLM_GATEWAY_URL"),
		LLMAPIKey:       os.Getenv("LLM_API_KEY"),
		UseMockLLM:      os.Getenv("USE_MOCK_LLM") == "true",
		LLMTimeoutSec:   intVar("LLM_TIMEOUT_SEC", 25),
		LLMMaxRetrySec:  intVar("LLM_MAX_RETRY_SEC", 45),
		Port:            envOr("PORT", "8080"),
	}
	return cfg, errors.Join(errs...)
}

// Load reads the environment and, when EVAL_CONFIG is set, overlays the
// TOML file it points to.
func Load() (Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return cfg, err
	}
	if path := os.Getenv("EVAL_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.Validate()
}

// LoadFile overlays the non-zero values found in a TOML file.
func (c *Config) LoadFile(path string) error {
	var file Config
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if file.DatasetPath != "" {
		c.DatasetPath = file.DatasetPath
	}
	if file.GroundTruthPath != "" {
		c.GroundTruthPath = file.GroundTruthPath
	}
	if file.ReportPath != "" {
		c.ReportPath = file.ReportPath
	}
	if len(file.Models) > 0 {
		c.Models = file.Models
	}
	if len(file.Prompts) > 0 {
		c.Prompts = file.Prompts
	}
	if file.TargetVisitYear != 0 {
		c.TargetVisitYear = file.TargetVisitYear
	}
	if file.UseMockLLM {
		c.UseMockLLM = true
	}
	if file.LLMTimeoutSec != 0 {
		c.LLMTimeoutSec = file.LLMTimeoutSec
	}
	if file.LLMMaxRetrySec != 0 {
		c.LLMMaxRetrySec = file.LLMMaxRetrySec
	}
	for i, p := range c.Prompts {
		if p.Name == "" {
			c.Prompts[i].Name = fmt.Sprintf("prompt-%d", i+1)
		}
	}
	return nil
}

// Validate checks the settings needed for an evaluation run.
func (c Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("no models configured")
	}
	if len(c.Prompts) == 0 {
		return fmt.Errorf("no prompts configured")
	}
	for _, p := range c.Prompts {
		if p.Path == "" {
			return fmt.Errorf("prompt %q has no path", p.Name)
		}
	}
	if !c.UseMockLLM && (c.LLMGatewayURL == "" || c.LLMAPIKey == "") {
		return fmt.Errorf("LLM_GATEWAY_URL and LLM_API_KEY are required unless USE_MOCK_LLM=true")
	}
	if c.LLMTimeoutSec <= 0 || c.LLMMaxRetrySec <= 0 {
		return fmt.Errorf("llm timeouts must be > 0")
	}
	if c.TargetVisitYear <= 0 {
		return fmt.Errorf("target visit year must be > 0")
	}
	return nil
}

// LLMTimeout is the per-request HTTP timeout.
func (c Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSec) * time.Second
}

// LLMMaxRetry bounds the total retry time of one extraction.
func (c Config) LLMMaxRetry() time.Duration {
	return time.Duration(c.LLMMaxRetrySec) * time.Second
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def, fmt.Errorf("%s=%q is not an integer", k, v)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
