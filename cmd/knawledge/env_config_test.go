package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sethvargo/go-envconfig"

	"github.com/alnah/go-knawledge/internal/config"
)

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - KNAWLEDGE_* decoding
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	env, err := loadEnvConfig(context.Background(), envconfig.MapLookuper(map[string]string{
		"KNAWLEDGE_CONFIG":  "site",
		"KNAWLEDGE_ADDR":    ":9000",
		"KNAWLEDGE_DOCS":    "docs",
		"KNAWLEDGE_STYLE":   "print",
		"KNAWLEDGE_WORKERS": "4",
		"CONFIG":            "ignored without prefix",
	}))
	if err != nil {
		t.Fatalf("loadEnvConfig() error = %v", err)
	}

	want := envConfig{ConfigPath: "site", Addr: ":9000", Docs: "docs", Style: "print", Workers: 4}
	if *env != want {
		t.Errorf("loadEnvConfig() = %+v, want %+v", *env, want)
	}
}

func TestLoadEnvConfig_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		workers string
	}{
		{"not a number", "many"},
		{"negative", "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := loadEnvConfig(context.Background(), envconfig.MapLookuper(map[string]string{
				"KNAWLEDGE_WORKERS": tt.workers,
			}))
			if !errors.Is(err, ErrEnvConfig) {
				t.Errorf("loadEnvConfig() error = %v, want ErrEnvConfig", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env overrides file values
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Input.DefaultDir = "from-file"
	cfg.Assets.Style = "file-style"

	applyEnvConfig(&envConfig{Addr: ":9000", Docs: "from-env"}, cfg)

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want :9000", cfg.Server.Addr)
	}
	if cfg.Input.DefaultDir != "from-env" {
		t.Errorf("Input.DefaultDir = %q, want from-env", cfg.Input.DefaultDir)
	}
	if cfg.Assets.Style != "file-style" {
		t.Errorf("unset env var overwrote Assets.Style: %q", cfg.Assets.Style)
	}
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	warnUnknownEnvVars(&buf, []string{
		"KNAWLEDGE_DOCS=docs",
		"KNAWLEDGE_DOC=typo",
		"HOME=/root",
	})

	out := buf.String()
	if !strings.Contains(out, "KNAWLEDGE_DOC ") {
		t.Errorf("expected warning for KNAWLEDGE_DOC, got %q", out)
	}
	if strings.Count(out, "warning:") != 1 {
		t.Errorf("expected exactly one warning, got %q", out)
	}
}
