package config

import (
	"strings"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.WriteTimeoutSec != 10 || cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("unexpected default timeouts: %+v", cfg.HTTP)
	}
	if cfg.Embedding.Provider.Name != "openai" {
		t.Errorf("default provider = %q, want openai", cfg.Embedding.Provider.Name)
	}
	if cfg.Embedding.Vectorizer.Model != "text-embedding-3-small" {
		t.Errorf("default model = %q", cfg.Embedding.Vectorizer.Model)
	}
	if cfg.Cache.TTLHours != 24 {
		t.Errorf("default cache ttl = %d, want 24", cfg.Cache.TTLHours)
	}
}

func TestApplyDefaults_DropsEmptyCacheAddrs(t *testing.T) {
	cfg := Config{Cache: CacheConfig{Addrs: []string{"", "localhost:6379", ""}}}
	cfg.ApplyDefaults()

	if len(cfg.Cache.Addrs) != 1 || cfg.Cache.Addrs[0] != "localhost:6379" {
		t.Errorf("addrs = %v, want [localhost:6379]", cfg.Cache.Addrs)
	}
}

func TestValidate_PortRange(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 70000}}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for out-of-range port")
	}

	cfg.HTTP.Port = 8080
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_NegativeDimensions(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.Embedding.Vectorizer.Dimensions = -1

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative dimensions")
	}
}

func TestEmbeddingEnabled(t *testing.T) {
	cfg := Config{}
	if cfg.EmbeddingEnabled() {
		t.Error("expected disabled with empty api_key")
	}

	cfg.Embedding.Provider.APIKey = "sk-test"
	if !cfg.EmbeddingEnabled() {
		t.Error("expected enabled with api_key set")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SEMSEARCH_TEST_VAR", "hello")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", "value: ${SEMSEARCH_TEST_VAR}", "value: hello"},
		{"unset variable", "value: ${SEMSEARCH_TEST_UNSET}", "value: "},
		{"unset with default", "value: ${SEMSEARCH_TEST_UNSET:-fallback}", "value: fallback"},
		{"set overrides default", "value: ${SEMSEARCH_TEST_VAR:-fallback}", "value: hello"},
		{"no variables", "value: plain", "value: plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(expandEnvVars([]byte(tt.in)))
			if got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if env := GetEnv(); env != "local" {
		t.Errorf("GetEnv() = %q, want local", env)
	}

	t.Setenv("ENV", "prod")
	if env := GetEnv(); env != "prod" {
		t.Errorf("GetEnv() = %q, want prod", env)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("does-not-exist")
	if err == nil || !strings.Contains(err.Error(), "failed to read config") {
		t.Errorf("expected read error, got %v", err)
	}
}
