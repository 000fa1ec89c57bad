package internal

import (
	"strings"
	"testing"
	"time"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if !cfg.Watch.Enabled {
		t.Error("watching should be on by default")
	}
	if cfg.Search.Descending() {
		t.Error("default order should be ascending")
	}
}

func TestSearchConfig_Order(t *testing.T) {
	cfg := SearchConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty order should default: %v", err)
	}
	if cfg.Order != OrderAsc {
		t.Errorf("order = %q, want %q", cfg.Order, OrderAsc)
	}

	cfg = SearchConfig{Order: "desc"}
	if err := cfg.Validate(); err != nil || !cfg.Descending() {
		t.Errorf("desc order: err=%v descending=%v", err, cfg.Descending())
	}

	cfg = SearchConfig{Order: "random"}
	if err := cfg.Validate(); err == nil {
		t.Error("unknown order should fail")
	}
}

func TestVaultConfig_RequiresGroupDirs(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Vault.PapersDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty papers_dir should fail")
	}
}

func TestWatchConfig_Bounds(t *testing.T) {
	cfg := WatchConfig{RenameWindow: -time.Second}
	if err := cfg.Validate(); err == nil {
		t.Error("negative rename window should fail")
	}
	cfg = WatchConfig{QueueSize: -1}
	if err := cfg.Validate(); err == nil {
		t.Error("negative queue size should fail")
	}
}

func TestIndexConfig_Bounds(t *testing.T) {
	cfg := IndexConfig{LoadWorkers: 1000}
	if err := cfg.Validate(); err == nil {
		t.Error("excessive worker count should fail")
	}
}

func TestAuthConfig_BearerToken(t *testing.T) {
	off := AuthConfig{Mode: AuthModeDisabled, Token: "leftover"}
	if got := off.BearerToken(); got != "" {
		t.Errorf("disabled BearerToken = %q, want empty", got)
	}
	on := AuthConfig{Mode: AuthModeToken, Token: "s3cret"}
	if got := on.BearerToken(); got != "s3cret" {
		t.Errorf("token BearerToken = %q", got)
	}
}
