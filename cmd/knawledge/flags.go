package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-knawledge/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds page assembly flags shared by render and serve.
type pageFlags struct {
	style       string
	dateFormat  string
	toc         bool
	noTOC       bool
	tocTitle    string
	tocMinDepth int
	tocMaxDepth int
}

// renderFlags holds all flags for the render command.
type renderFlags struct {
	common     commonFlags
	page       pageFlags
	output     string
	workers    int
	standalone bool
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common commonFlags
	page   pageFlags
	addr   string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addPageFlags adds page assembly flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVar(&f.style, "style", "", "CSS style name")
	fs.StringVar(&f.dateFormat, "date-format", "", "updated date format: preset or tokens")
	fs.BoolVar(&f.toc, "toc", false, "insert a table of contents")
	fs.BoolVar(&f.noTOC, "no-toc", false, "disable table of contents")
	fs.StringVar(&f.tocTitle, "toc-title", "", "table of contents heading")
	fs.IntVar(&f.tocMinDepth, "toc-min-depth", 0, "min heading depth for TOC (1-6, default: 2)")
	fs.IntVar(&f.tocMaxDepth, "toc-max-depth", 0, "max heading depth for TOC (1-6, default: 3)")
}

// parseFlagSet runs fs and maps pflag errors onto ErrUsage.
// flag.ErrHelp is returned as is after the usage was printed.
func parseFlagSet(fs *flag.FlagSet, args []string) error {
	err := fs.Parse(args)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// parseRenderFlags parses render command flags and returns positional args.
func parseRenderFlags(args []string, stderr io.Writer) (*renderFlags, []string, error) {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &renderFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVarP(&f.standalone, "standalone", "s", false, "wrap output in a full HTML page")
	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)

	fs.Usage = func() { printRenderUsage(stderr) }

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags and returns positional args.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, []string, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address host:port")
	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)

	fs.Usage = func() { printServeUsage(stderr) }

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// mergePageFlags applies page flags to cfg. Zero values leave cfg as is.
func mergePageFlags(f *pageFlags, cfg *config.Config) {
	if f.style != "" {
		cfg.Assets.Style = f.style
	}
	if f.dateFormat != "" {
		cfg.Output.DateFormat = f.dateFormat
	}
	if f.toc || f.tocTitle != "" {
		cfg.TOC.Enabled = true
	}
	if f.tocTitle != "" {
		cfg.TOC.Title = f.tocTitle
	}
	if f.tocMinDepth != 0 {
		cfg.TOC.MinDepth = f.tocMinDepth
	}
	if f.tocMaxDepth != 0 {
		cfg.TOC.MaxDepth = f.tocMaxDepth
	}
	if f.noTOC {
		cfg.TOC.Enabled = false
	}
}
