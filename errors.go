package knawledge

import (
	"errors"

	"github.com/alnah/go-knawledge/internal/document"
	"github.com/alnah/go-knawledge/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrUnknownExtension = errors.New("unknown extension")

	// ErrDuplicateExtension is returned when an extension is enabled twice.
	// Each stage runs exactly once per document.
	ErrDuplicateExtension = pipeline.ErrDuplicateStage

	// ErrFrontMatter is returned by Render when the front matter block is
	// not valid YAML.
	ErrFrontMatter = document.ErrFrontMatter
)
