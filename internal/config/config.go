// Package config loads and validates the YAML configuration shared by the
// render and serve commands.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alnah/go-knawledge"
	"github.com/alnah/go-knawledge/internal/dateutil"
	"github.com/alnah/go-knawledge/internal/fileutil"
	"github.com/alnah/go-knawledge/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrEmptyConfigName   = errors.New("config name cannot be empty")
	ErrConfigParse       = errors.New("failed to parse config")
	ErrFieldTooLong      = errors.New("field exceeds maximum length")
	ErrInvalidExtension  = errors.New("invalid extension")
	ErrInvalidTOCDepth   = errors.New("invalid TOC depth")
	ErrInvalidListenAddr = errors.New("invalid listen address")
)

// appName is the directory searched under the user config dir.
const appName = "knawledge"

// Field length limits.
const (
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxTitleLength    = 200  // Site and TOC titles
	MaxStyleLength    = 64   // Style name
	MaxAddrLength     = 256  // host:port
	MaxExtensionCount = 16
)

// Config holds all configuration for rendering and serving.
type Config struct {
	Render     RenderConfig `yaml:"render"`
	Extensions []string     `yaml:"extensions"` // nil = defaults, [] = none
	TOC        TOCConfig    `yaml:"toc"`
	Assets     AssetsConfig `yaml:"assets"`
	Server     ServerConfig `yaml:"server"`
	Input      InputConfig  `yaml:"input"`
	Output     OutputConfig `yaml:"output"`
}

// RenderConfig mirrors knawledge.RenderOptions. Nil fields keep the
// renderer defaults.
type RenderConfig struct {
	GitHubStyleCodeBlocks *bool `yaml:"githubStyleCodeBlocks"`
	CompatibleHeaderIDs   *bool `yaml:"compatibleHeaderIds"`
	Tables                *bool `yaml:"tables"`
	AllowRawHTML          *bool `yaml:"allowRawHtml"`
}

// TOCConfig defines table of contents options for served and standalone pages.
type TOCConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Title    string `yaml:"title"`    // Empty = no title above TOC
	MinDepth int    `yaml:"minDepth"` // 1-6, default 2
	MaxDepth int    `yaml:"maxDepth"` // 1-6, default 3
}

// AssetsConfig defines where styles are loaded from.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = embedded assets only
	Style    string `yaml:"style"`    // Empty = default style
}

// ServerConfig defines the serve command options.
type ServerConfig struct {
	Addr  string `yaml:"addr"`
	Title string `yaml:"title"` // Index page title
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default docs directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = next to sources)
	DateFormat string `yaml:"dateFormat"` // Preset or tokens for "updated" dates (empty = iso)
}

// Defaults for unset fields.
const (
	DefaultAddr        = "127.0.0.1:8080"
	DefaultServerTitle = "Knowledge base"
	DefaultTOCMinDepth = 2
	DefaultTOCMaxDepth = 3
)

// Validate checks field lengths and value ranges.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("assets.basePath", c.Assets.BasePath, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("assets.style", c.Assets.Style, MaxStyleLength); err != nil {
		return err
	}
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if c.Server.Addr != "" && !strings.Contains(c.Server.Addr, ":") {
		return fmt.Errorf("%w: server.addr %q (want host:port)", ErrInvalidListenAddr, c.Server.Addr)
	}
	if err := validateFieldLength("server.title", c.Server.Title, MaxTitleLength); err != nil {
		return err
	}
	if err := validateFieldLength("input.defaultDir", c.Input.DefaultDir, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("output.defaultDir", c.Output.DefaultDir, MaxPathLength); err != nil {
		return err
	}

	if _, err := dateutil.Layout(c.Output.DateFormat); err != nil {
		return fmt.Errorf("output.dateFormat: %w", err)
	}

	if err := validateExtensions(c.Extensions); err != nil {
		return err
	}

	if err := validateFieldLength("toc.title", c.TOC.Title, MaxTitleLength); err != nil {
		return err
	}
	if c.TOC.Enabled {
		minDepth, maxDepth := c.TOCDepth()
		if minDepth < 1 || minDepth > 6 {
			return fmt.Errorf("%w: toc.minDepth must be between 1 and 6, got %d", ErrInvalidTOCDepth, minDepth)
		}
		if maxDepth < 1 || maxDepth > 6 {
			return fmt.Errorf("%w: toc.maxDepth must be between 1 and 6, got %d", ErrInvalidTOCDepth, maxDepth)
		}
		if minDepth > maxDepth {
			return fmt.Errorf("%w: toc.minDepth (%d) exceeds toc.maxDepth (%d)", ErrInvalidTOCDepth, minDepth, maxDepth)
		}
	}

	return nil
}

func validateExtensions(names []string) error {
	if len(names) > MaxExtensionCount {
		return fmt.Errorf("%w: %d extensions (max %d)", ErrInvalidExtension, len(names), MaxExtensionCount)
	}
	known := knawledge.KnownExtensions()
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if !slices.Contains(known, name) {
			return fmt.Errorf("%w: extensions[%d] %q (known: %s)", ErrInvalidExtension, i, name, strings.Join(known, ", "))
		}
		if seen[name] {
			return fmt.Errorf("%w: extensions[%d] %q listed twice", ErrInvalidExtension, i, name)
		}
		seen[name] = true
	}
	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// RenderOptions resolves the render section against the renderer defaults.
func (c *Config) RenderOptions() knawledge.RenderOptions {
	opts := knawledge.DefaultRenderOptions()
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&opts.GitHubStyleCodeBlocks, c.Render.GitHubStyleCodeBlocks)
	set(&opts.CompatibleHeaderIDs, c.Render.CompatibleHeaderIDs)
	set(&opts.Tables, c.Render.Tables)
	set(&opts.AllowRawHTML, c.Render.AllowRawHTML)
	return opts
}

// RendererOptions returns the knawledge options described by c.
func (c *Config) RendererOptions() []knawledge.Option {
	opts := []knawledge.Option{knawledge.WithRenderOptions(c.RenderOptions())}
	if c.Extensions != nil {
		opts = append(opts, knawledge.WithExtensions(c.Extensions...))
	}
	return opts
}

// TOCDepth returns the TOC depth range with defaults applied.
func (c *Config) TOCDepth() (minDepth, maxDepth int) {
	minDepth, maxDepth = c.TOC.MinDepth, c.TOC.MaxDepth
	if minDepth == 0 {
		minDepth = DefaultTOCMinDepth
	}
	if maxDepth == 0 {
		maxDepth = DefaultTOCMaxDepth
	}
	return minDepth, maxDepth
}

// DefaultConfig returns a configuration with every optional feature off.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: DefaultAddr, Title: DefaultServerTitle},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
// Unset server fields take their defaults.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Server.Title == "" {
		cfg.Server.Title = DefaultServerTitle
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the files tried for a config name, in order:
// current directory, then <user config dir>/knawledge/, each with .yaml
// before .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, appName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file of SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
