package knawledge

import "github.com/alnah/go-knawledge/internal/interact"

// ScriptRegistrar installs a named client-side script into the page context
// that will display rendered documents.
type ScriptRegistrar = interact.Registrar

// ScriptSet is a ScriptRegistrar that collects scripts for a page host to
// emit with Tags. Safe for concurrent use.
type ScriptSet = interact.ScriptSet

// Guard is a one-way "handler installed" flag. The zero value is ready.
type Guard = interact.Guard

// NewScriptSet creates an empty ScriptSet.
func NewScriptSet() *ScriptSet {
	return interact.NewScriptSet()
}
