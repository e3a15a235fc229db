// Package hints provides actionable error hints for common CLI failures.
// Hints are formatted as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"
)

// ForConfigNotFound suggests --config and the user config location among
// the searched paths.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml or set KNAWLEDGE_CONFIG"

	for _, p := range searchedPaths {
		if strings.Contains(p, "knawledge/") || strings.Contains(p, `knawledge\`) {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForNoInput explains where the docs directory can come from.
func ForNoInput() string {
	return format("pass a file or directory, set KNAWLEDGE_DOCS, or set input.defaultDir in the config")
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForStyleNotFound lists the styles that can be used instead.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForAddrInUse suggests another listen address.
func ForAddrInUse(addr string) string {
	return format(addr + " is taken; use --addr or KNAWLEDGE_ADDR to pick another port")
}

// ForUnknownExtension lists the extensions the renderer accepts.
func ForUnknownExtension(known []string) string {
	return formatHints([]string{
		"known extensions: " + strings.Join(known, ", "),
		"an empty list disables all of them",
	})
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
