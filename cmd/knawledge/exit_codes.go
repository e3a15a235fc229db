package main

import (
	"errors"
	"os"

	"github.com/alnah/go-knawledge"
	"github.com/alnah/go-knawledge/internal/assets"
	"github.com/alnah/go-knawledge/internal/config"
	"github.com/alnah/go-knawledge/internal/dateutil"
	"github.com/alnah/go-knawledge/internal/document"
)

// Exit codes for the knawledge CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteHTML) ||
		errors.Is(err, ErrCreateOutputDir) ||
		errors.Is(err, document.ErrNotDirectory) ||
		errors.Is(err, assets.ErrAssetRead) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrEnvConfig) ||
		errors.Is(err, ErrNotMarkdown) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidExtension) ||
		errors.Is(err, config.ErrInvalidTOCDepth) ||
		errors.Is(err, config.ErrInvalidListenAddr) ||
		errors.Is(err, dateutil.ErrInvalidDateFormat) ||
		errors.Is(err, knawledge.ErrUnknownExtension) ||
		errors.Is(err, knawledge.ErrDuplicateExtension) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) ||
		errors.Is(err, assets.ErrInvalidBasePath) ||
		errors.Is(err, assets.ErrPathTraversal) {
		return ExitUsage
	}

	return ExitGeneral
}
