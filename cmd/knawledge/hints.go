package main

import (
	"errors"
	"syscall"

	"github.com/alnah/go-knawledge"
	"github.com/alnah/go-knawledge/internal/assets"
	"github.com/alnah/go-knawledge/internal/config"
	"github.com/alnah/go-knawledge/internal/fileutil"
	"github.com/alnah/go-knawledge/internal/hints"
)

// listenError carries the address a serve run failed to bind.
type listenError struct {
	addr string
	err  error
}

func (e *listenError) Error() string { return "listening on " + e.addr + ": " + e.err.Error() }
func (e *listenError) Unwrap() error { return e.err }

// configNameError carries the config name that could not be resolved.
type configNameError struct {
	name string
	err  error
}

func (e *configNameError) Error() string { return "loading config: " + e.err.Error() }
func (e *configNameError) Unwrap() error { return e.err }

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	var cfgErr *configNameError
	var listenErr *listenError

	switch {
	case errors.As(err, &cfgErr) && errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(cfgErr.name):
		return hints.ForConfigNotFound(config.SearchPaths(cfgErr.name))
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, ErrNoInput):
		return hints.ForNoInput()
	case errors.Is(err, ErrCreateOutputDir):
		return hints.ForOutputDirectory()
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound([]string{assets.DefaultStyleName})
	case errors.Is(err, knawledge.ErrUnknownExtension), errors.Is(err, config.ErrInvalidExtension):
		return hints.ForUnknownExtension(knawledge.KnownExtensions())
	case errors.As(err, &listenErr) && errors.Is(err, syscall.EADDRINUSE):
		return hints.ForAddrInUse(listenErr.addr)
	}
	return ""
}
