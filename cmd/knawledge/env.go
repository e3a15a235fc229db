package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/alnah/go-knawledge/internal/log"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now      func() time.Time
	Stdout   io.Writer
	Stderr   io.Writer
	Lookuper envconfig.Lookuper // KNAWLEDGE_* lookups
	Environ  func() []string    // for unknown variable warnings
	Logger   func(verbose bool) *slog.Logger
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:      time.Now,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Lookuper: envconfig.OsLookuper(),
		Environ:  os.Environ,
		Logger: func(verbose bool) *slog.Logger {
			return log.New("knawledge", verbose)
		},
	}
}
