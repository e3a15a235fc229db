package interact

import (
	"html"
	"strings"
	"sync"
)

// ScriptSet is a Registrar that keeps registered scripts in memory so a
// page host can emit them. Safe for concurrent use.
type ScriptSet struct {
	mu      sync.RWMutex
	names   []string
	sources map[string]string
}

// NewScriptSet creates an empty ScriptSet.
func NewScriptSet() *ScriptSet {
	return &ScriptSet{sources: make(map[string]string)}
}

// RegisterScript stores source under name. Later registrations of the same
// name are ignored.
func (s *ScriptSet) RegisterScript(name, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sources[name]; ok {
		return
	}
	s.names = append(s.names, name)
	s.sources[name] = source
}

// Names returns registered script names in registration order.
func (s *ScriptSet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.names...)
}

// Len returns the number of registered scripts.
func (s *ScriptSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.names)
}

// Tags renders every script as an inline <script> element.
func (s *ScriptSet) Tags() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buf strings.Builder
	for _, name := range s.names {
		buf.WriteString(`<script data-name="`)
		buf.WriteString(html.EscapeString(name))
		buf.WriteString(`">`)
		buf.WriteString(escapeScript(s.sources[name]))
		buf.WriteString("</script>\n")
	}
	return buf.String()
}

// escapeScript keeps source from closing the surrounding <script> element.
func escapeScript(source string) string {
	return strings.ReplaceAll(source, "</", `<\/`)
}

// Compile-time interface check.
var _ Registrar = (*ScriptSet)(nil)
