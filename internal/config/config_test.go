package config

import "testing"

func TestLoadIncludesSearchDefaults(t *testing.T) {
	t.Setenv("SEARCH_TOP_N", "")
	t.Setenv("SEARCH_CANDIDATE_TOP_N", "")
	t.Setenv("SEARCH_MAX_VARIANTS", "")
	t.Setenv("SEARCH_SOURCE_TIMEOUT_MS", "")
	t.Setenv("LLM_PROVIDER", "")

	cfg := Load()
	if cfg.SearchTopN != 5 {
		t.Fatalf("expected default top n 5, got %d", cfg.SearchTopN)
	}
	if cfg.SearchCandidateTopN != 20 {
		t.Fatalf("expected default candidate top n 20, got %d", cfg.SearchCandidateTopN)
	}
	if cfg.SearchMaxVariants != 3 {
		t.Fatalf("expected default max variants 3, got %d", cfg.SearchMaxVariants)
	}
	if cfg.SearchSourceTimeoutMS != 3000 {
		t.Fatalf("expected default source timeout 3000ms, got %d", cfg.SearchSourceTimeoutMS)
	}
	if cfg.LLMProvider != "ollama" {
		t.Fatalf("expected default provider ollama, got %q", cfg.LLMProvider)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("SEARCH_TOP_N", "10")
	t.Setenv("SEARCH_CANDIDATE_TOP_N", "40")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("JUDGE_ENABLED", "true")
	t.Setenv("JUDGE_RATE_RPS", "2.5")

	cfg := Load()
	if cfg.SearchTopN != 10 {
		t.Fatalf("expected top n 10, got %d", cfg.SearchTopN)
	}
	if cfg.SearchCandidateTopN != 40 {
		t.Fatalf("expected candidate top n 40, got %d", cfg.SearchCandidateTopN)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected provider override, got %q", cfg.LLMProvider)
	}
	if !cfg.JudgeEnabled {
		t.Fatalf("expected judge enabled")
	}
	if cfg.JudgeRateRPS != 2.5 {
		t.Fatalf("expected judge rate 2.5, got %v", cfg.JudgeRateRPS)
	}
}

func TestLoadFallsBackOnMalformedNumbers(t *testing.T) {
	t.Setenv("SEARCH_TOP_N", "lots")
	t.Setenv("JUDGE_RATE_RPS", "fast")

	cfg := Load()
	if cfg.SearchTopN != 5 {
		t.Fatalf("malformed int must fall back to default, got %d", cfg.SearchTopN)
	}
	if cfg.JudgeRateRPS != 5 {
		t.Fatalf("malformed float must fall back to default, got %v", cfg.JudgeRateRPS)
	}
}
