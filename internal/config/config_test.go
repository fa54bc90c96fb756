package config

import (
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:      HTTPConfig{Port: 8080},
		Embedding: EmbeddingConfig{APIKey: "test-key"},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingEmbeddingKey(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding api key")
	}
}

func TestValidate_MinSimilarityRange(t *testing.T) {
	for _, bad := range []float32{-1.5, 1.5} {
		cfg := validConfig()
		cfg.Ask.MinSimilarity = bad
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for min_similarity %g", bad)
		}
	}

	cfg := validConfig()
	cfg.Ask.MinSimilarity = 0.35
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error for valid min_similarity: %v", err)
	}
}

func TestValidate_DuplicateCollections(t *testing.T) {
	cfg := validConfig()
	cfg.Vectorstore.Collections = []string{"law", "law"}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for duplicate collection names")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.Ask.MinSimilarity != 0.35 {
		t.Errorf("Ask.MinSimilarity = %g, want 0.35", cfg.Ask.MinSimilarity)
	}
	if cfg.Ask.TopK != 5 {
		t.Errorf("Ask.TopK = %d, want 5", cfg.Ask.TopK)
	}
	if len(cfg.Vectorstore.Collections) == 0 {
		t.Error("expected default collection set")
	}
	found := false
	for _, name := range cfg.Vectorstore.Collections {
		if name == "press_release" {
			found = true
		}
	}
	if !found {
		t.Error("default collections must include press_release")
	}
	if cfg.HTTP.WriteTimeoutSec <= cfg.HTTP.ReadTimeoutSec {
		t.Error("write timeout should allow for completion latency")
	}
}

func TestVectorstorePaths(t *testing.T) {
	vs := VectorstoreConfig{Path: "data/vectorstores"}

	if got, want := vs.IndexPath("law"), filepath.Join("data/vectorstores", "law.vectors"); got != want {
		t.Errorf("IndexPath = %q, want %q", got, want)
	}
	if got, want := vs.MetadataPath("law"), filepath.Join("data/vectorstores", "law.meta.json"); got != want {
		t.Errorf("MetadataPath = %q, want %q", got, want)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("LAWDEX_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("api_key: ${LAWDEX_TEST_KEY}\nmodel: ${LAWDEX_UNSET:-fallback}")))
	want := "api_key: secret\nmodel: fallback"
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}
