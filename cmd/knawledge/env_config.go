package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sethvargo/go-envconfig"

	"github.com/alnah/go-knawledge/internal/config"
)

// envPrefix namespaces every variable read by the CLI.
const envPrefix = "KNAWLEDGE_"

// ErrEnvConfig wraps malformed KNAWLEDGE_* values.
var ErrEnvConfig = errors.New("invalid environment configuration")

// envConfig holds configuration from environment variables.
// Field tags omit envPrefix, which the lookuper adds.
type envConfig struct {
	ConfigPath string `env:"CONFIG"`     // config file name or path
	Addr       string `env:"ADDR"`       // serve listen address
	Docs       string `env:"DOCS"`       // default docs directory
	OutputDir  string `env:"OUTPUT_DIR"` // default render output directory
	Style      string `env:"STYLE"`      // CSS style name
	Workers    int    `env:"WORKERS"`    // render concurrency
}

// knownEnvVars lists valid KNAWLEDGE_* variables.
var knownEnvVars = map[string]bool{
	"KNAWLEDGE_CONFIG":     true,
	"KNAWLEDGE_ADDR":       true,
	"KNAWLEDGE_DOCS":       true,
	"KNAWLEDGE_OUTPUT_DIR": true,
	"KNAWLEDGE_STYLE":      true,
	"KNAWLEDGE_WORKERS":    true,
}

// loadEnvConfig decodes KNAWLEDGE_* variables from lookuper.
func loadEnvConfig(ctx context.Context, lookuper envconfig.Lookuper) (*envConfig, error) {
	var env envConfig
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: envconfig.PrefixLookuper(envPrefix, lookuper),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnvConfig, err)
	}
	if env.Workers < 0 {
		return nil, fmt.Errorf("%w: %sWORKERS must be >= 0, got %d", ErrEnvConfig, envPrefix, env.Workers)
	}
	return &env, nil
}

// warnUnknownEnvVars reports KNAWLEDGE_* variables nobody reads, which are
// usually typos.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overlays set variables onto cfg. Flags are merged after
// this, giving flags > env > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.Docs != "" {
		cfg.Input.DefaultDir = env.Docs
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Style != "" {
		cfg.Assets.Style = env.Style
	}
}
