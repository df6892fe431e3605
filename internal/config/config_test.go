package config

import (
	"strings"
	"testing"
)

func minimalValidConfig() Config {
	cfg := Config{}
	cfg.HTTP.Port = 8080
	cfg.Embedding.Model = "text-embedding-3-small"
	cfg.Grading.Model = "gpt-4o-mini"
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := minimalValidConfig()

	if cfg.Store.Driver != "sqlite" {
		t.Errorf("default driver = %q, want sqlite", cfg.Store.Driver)
	}
	if cfg.Retrieval.MinRelevance != 41 {
		t.Errorf("min relevance = %v, want 41", cfg.Retrieval.MinRelevance)
	}
	if cfg.Retrieval.HighCutoff != 80 || cfg.Retrieval.MediumCutoff != 50 {
		t.Errorf("cutoffs = %v/%v, want 80/50", cfg.Retrieval.HighCutoff, cfg.Retrieval.MediumCutoff)
	}
	if cfg.Retrieval.AgentPoolSize != 20 || cfg.Retrieval.AgentMinScore != 20 {
		t.Errorf("agent pool = %v/%v, want 20/20", cfg.Retrieval.AgentPoolSize, cfg.Retrieval.AgentMinScore)
	}
	if cfg.Retrieval.ConfidenceFloor != 0.3 {
		t.Errorf("confidence floor = %v, want 0.3", cfg.Retrieval.ConfidenceFloor)
	}
	if cfg.Retry.MaxAttempts != 10 || cfg.Retry.BaseDelayMS != 100 {
		t.Errorf("retry = %d/%dms, want 10/100ms", cfg.Retry.MaxAttempts, cfg.Retry.BaseDelayMS)
	}
	if cfg.Grading.TimeoutSec != 30 || cfg.Grading.ProTimeoutSec != 60 {
		t.Errorf("grading timeouts = %d/%d, want 30/60", cfg.Grading.TimeoutSec, cfg.Grading.ProTimeoutSec)
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := minimalValidConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := minimalValidConfig()
	cfg.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("port 0 should be rejected")
	}
}

func TestValidateRequiresDriverSpecificFields(t *testing.T) {
	cfg := minimalValidConfig()
	cfg.Store.Driver = "redis"
	cfg.Store.Redis.Addrs = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("redis driver without addrs should be rejected")
	}

	cfg = minimalValidConfig()
	cfg.Store.Driver = "qdrant"
	cfg.Store.Qdrant.Host = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("qdrant driver without host should be rejected")
	}

	cfg = minimalValidConfig()
	cfg.Store.Driver = "chroma"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown driver should be rejected")
	}
}

func TestValidateRequiresModels(t *testing.T) {
	cfg := minimalValidConfig()
	cfg.Embedding.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing embedding model should be rejected")
	}

	cfg = minimalValidConfig()
	cfg.Grading.Model = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("missing grading model should be rejected")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FAQDEX_TEST_VAR", "hello")

	in := []byte("a: ${FAQDEX_TEST_VAR}\nb: ${FAQDEX_TEST_MISSING:-fallback}\nc: ${FAQDEX_TEST_MISSING}")
	out := string(expandEnvVars(in))

	if !strings.Contains(out, "a: hello") {
		t.Errorf("set variable not expanded: %s", out)
	}
	if !strings.Contains(out, "b: fallback") {
		t.Errorf("default not applied: %s", out)
	}
	if !strings.Contains(out, "c: \n") && !strings.HasSuffix(out, "c: ") {
		t.Errorf("missing variable without default should expand empty: %s", out)
	}
}
