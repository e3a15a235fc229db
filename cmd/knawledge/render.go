package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-knawledge"
	"github.com/alnah/go-knawledge/internal/config"
	"github.com/alnah/go-knawledge/internal/fileutil"
)

// Sentinel errors for the render command.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadMarkdown       = errors.New("failed to read markdown file")
	ErrWriteHTML          = errors.New("failed to write HTML file")
	ErrCreateOutputDir    = errors.New("failed to create output directory")
	ErrNotMarkdown        = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// MaxWorkers caps render concurrency.
const MaxWorkers = 64

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// fileToRender is one Markdown source and its HTML destination.
type fileToRender struct {
	InputPath  string
	OutputPath string
}

// renderResult holds the outcome of a single render.
type renderResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// renderParams groups what every file render shares.
type renderParams struct {
	renderer   *knawledge.Renderer
	pages      *pageBuilder // nil unless standalone
	logger     *slog.Logger
	standalone bool
}

// runRenderCmd parses flags and runs the render command.
func runRenderCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseRenderFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	return runRender(ctx, positional, flags, env)
}

// runRender renders one file or every Markdown file under a directory.
// Output is static: no client-side script is registered.
func runRender(ctx context.Context, positional []string, flags *renderFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg, envCfg, err := loadCommandConfig(ctx, flags.common.config, env)
	if err != nil {
		return err
	}
	mergePageFlags(&flags.page, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := env.Logger(flags.common.verbose)

	renderer, err := knawledge.NewRenderer(append(cfg.RendererOptions(), knawledge.WithLogger(logger))...)
	if err != nil {
		return err
	}

	params := &renderParams{renderer: renderer, logger: logger, standalone: flags.standalone}
	if flags.standalone {
		if params.pages, err = newPageBuilder(cfg); err != nil {
			return err
		}
	}

	inputPath, err := resolveInputPath(positional, cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		if !flags.common.quiet {
			fmt.Fprintf(env.Stdout, "No markdown files found in %s\n", inputPath)
		}
		return nil
	}

	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	results := renderBatch(ctx, files, params, workers)
	failed := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed: %w", failed, len(results), firstError(results))
	}
	return nil
}

// loadCommandConfig loads the config named by flag or KNAWLEDGE_CONFIG and
// overlays the environment. Without a name, defaults are used.
func loadCommandConfig(ctx context.Context, flagConfig string, env *Environment) (*config.Config, *envConfig, error) {
	warnUnknownEnvVars(env.Stderr, env.Environ())

	envCfg, err := loadEnvConfig(ctx, env.Lookuper)
	if err != nil {
		return nil, nil, err
	}

	name := flagConfig
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		if cfg, err = config.LoadConfig(name); err != nil {
			return nil, nil, &configNameError{name: name, err: err}
		}
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, envCfg, nil
}

// resolveInputPath picks the positional argument, else input.defaultDir.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir picks the flag, else output.defaultDir, else "" (next
// to each source).
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, MaxWorkers)
	}
	return nil
}

// discoverFiles lists the Markdown files to render. Hidden directories are
// skipped when walking.
func discoverFiles(inputPath, outputDir string) ([]fileToRender, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if !fileutil.IsMarkdownFile(inputPath) {
			return nil, fmt.Errorf("%w: got %q", ErrNotMarkdown, filepath.Ext(inputPath))
		}
		return []fileToRender{{InputPath: inputPath, OutputPath: resolveOutputPath(inputPath, outputDir, "")}}, nil
	}

	var files []fileToRender
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() {
			if path != inputPath && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !fileutil.IsMarkdownFile(path) {
			return nil
		}
		files = append(files, fileToRender{InputPath: path, OutputPath: resolveOutputPath(path, outputDir, inputPath)})
		return nil
	})
	return files, err
}

// resolveOutputPath determines the HTML output path for a Markdown file.
// An outputDir ending in .html names the output file itself.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	htmlName := fileutil.HTMLPath(filepath.Base(inputPath))

	if outputDir == "" {
		return fileutil.HTMLPath(inputPath)
	}
	if strings.HasSuffix(strings.ToLower(outputDir), ".html") {
		return outputDir
	}
	if baseInputDir != "" {
		if rel, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(rel), htmlName)
		}
	}
	return filepath.Join(outputDir, htmlName)
}

// renderBatch renders files concurrently, at most workers at a time
// (0 = GOMAXPROCS). One failure does not stop the others.
func renderBatch(ctx context.Context, files []fileToRender, params *renderParams, workers int) []renderResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]renderResult, len(files))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = renderResult{InputPath: f.InputPath, Err: err}
				return nil
			}
			results[i] = renderFile(f, params)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return results
}

// renderFile renders a single file and writes it atomically.
func renderFile(f fileToRender, params *renderParams) renderResult {
	start := time.Now()
	result := renderResult{InputPath: f.InputPath, OutputPath: f.OutputPath}
	fail := func(err error) renderResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrReadMarkdown, err))
	}

	res, err := params.renderer.Render(string(content))
	if err != nil {
		return fail(err)
	}

	out := res.HTML
	if params.standalone {
		var modTime time.Time
		if info, err := os.Stat(f.InputPath); err == nil {
			modTime = info.ModTime()
		}
		if out, err = params.pages.build(res, modTime, ""); err != nil {
			return fail(err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrCreateOutputDir, err))
	}
	if err := fileutil.WriteFileAtomic(f.OutputPath, out, filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrWriteHTML, err))
	}

	params.logger.Debug("rendered", "input", f.InputPath, "output", f.OutputPath, "title", res.Meta.Title)
	result.Duration = time.Since(start)
	return result
}

// printResults outputs render results and returns the failure count.
func printResults(results []renderResult, quiet, verbose bool, env *Environment) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}
		if quiet {
			continue
		}
		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", len(results)-failed, failed)
	}
	return failed
}

func firstError(results []renderResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
