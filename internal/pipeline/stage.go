package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/alnah/go-knawledge/internal/log"
)

// Stage names understood by the renderer.
const (
	StageHighlight     = "highlight"
	StageDocLinks      = "doc-links"
	StageHeaderAnchors = "header-anchors"
	StageCopyCode      = "copy-code"
)

// Sentinel errors for pipeline construction.
var (
	ErrNilStage       = errors.New("stage is nil")
	ErrUnnamedStage   = errors.New("stage has no name")
	ErrDuplicateStage = errors.New("stage registered more than once")
)

// Stage is one named HTML transformation. Apply must not retain htmlContent.
type Stage interface {
	Name() string
	Apply(htmlContent string) string
}

// StageFunc adapts a plain function to the Stage interface.
type StageFunc struct {
	name string
	fn   func(string) string
}

// NewStageFunc names fn as a Stage.
func NewStageFunc(name string, fn func(string) string) *StageFunc {
	return &StageFunc{name: name, fn: fn}
}

func (s *StageFunc) Name() string { return s.name }

func (s *StageFunc) Apply(htmlContent string) string { return s.fn(htmlContent) }

// Pipeline runs its stages in registration order, each exactly once per Run.
type Pipeline struct {
	stages []Stage
	logger *slog.Logger
}

// NewPipeline validates and orders stages. Names must be unique so no stage
// can be applied twice to the same document.
func NewPipeline(logger *slog.Logger, stages ...Stage) (*Pipeline, error) {
	if logger == nil {
		logger = log.Discard()
	}

	seen := make(map[string]bool, len(stages))
	for i, s := range stages {
		if s == nil {
			return nil, fmt.Errorf("%w: position %d", ErrNilStage, i)
		}
		name := s.Name()
		if name == "" {
			return nil, fmt.Errorf("%w: position %d", ErrUnnamedStage, i)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateStage, name)
		}
		seen[name] = true
	}

	return &Pipeline{stages: append([]Stage(nil), stages...), logger: logger}, nil
}

// Names returns the stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}

// Run threads htmlContent through every stage.
func (p *Pipeline) Run(htmlContent string) string {
	for _, s := range p.stages {
		htmlContent = p.apply(s, htmlContent)
	}
	return htmlContent
}

// apply runs one stage; a panicking stage leaves its input unchanged.
func (p *Pipeline) apply(s Stage, in string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("stage panicked, skipping", "stage", s.Name(), "panic", r)
			out = in
		}
	}()
	return s.Apply(in)
}

// HighlightStage turns ==text== placeholders into <mark> elements.
type HighlightStage struct{}

// NewHighlightStage creates a HighlightStage.
func NewHighlightStage() *HighlightStage { return &HighlightStage{} }

func (h *HighlightStage) Name() string { return StageHighlight }

func (h *HighlightStage) Apply(htmlContent string) string {
	return ConvertMarkPlaceholders(htmlContent)
}

// Compile-time interface checks.
var (
	_ Stage = (*StageFunc)(nil)
	_ Stage = (*HighlightStage)(nil)
)
