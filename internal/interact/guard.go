// Package interact tracks the client-side behavior that rendered documents
// depend on when they are displayed live in a browser.
//
// Rendering is pure text work. The only thing that is not is installing the
// page-level click handler behind the copy-code controls: it must happen at
// most once per process no matter how many documents are rendered, otherwise
// every click would trigger one clipboard write per installed handler.
package interact

import "sync/atomic"

// Registrar installs a named client-side script into an interactive page
// context. Hosts rendering for static storage have no Registrar.
type Registrar interface {
	RegisterScript(name, source string)
}

// Guard is a one-way uninstalled -> installed switch.
// The zero value is uninstalled and ready to use.
type Guard struct {
	installed atomic.Bool
}

// EnsureInstalled registers source with r the first time it is called with
// a non-nil Registrar and reports whether this call did the registration.
// A nil Registrar leaves the guard uninstalled. Concurrent callers never
// block: exactly one wins, the rest return false immediately.
func (g *Guard) EnsureInstalled(r Registrar, name, source string) bool {
	if r == nil {
		return false
	}
	if !g.installed.CompareAndSwap(false, true) {
		return false
	}
	r.RegisterScript(name, source)
	return true
}

// Installed reports whether the handler has been registered.
func (g *Guard) Installed() bool {
	return g.installed.Load()
}

// process is the guard shared by everything rendered in this process.
var process Guard

// EnsureInstalled runs the process-wide guard. See Guard.EnsureInstalled.
func EnsureInstalled(r Registrar, name, source string) bool {
	return process.EnsureInstalled(r, name, source)
}
