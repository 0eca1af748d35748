package browser

import (
	"github.com/qobs-build/projgen/internal/msg"
	"github.com/qobs-build/projgen/internal/project"
)

// Locator finds a browser executable by name, e.g. "iexplore".
type Locator interface {
	Locate(name string) (string, bool)
}

// Static is a Locator backed by a fixed table, normally the [browsers] section of the settings.
type Static map[string]string

func (s Static) Locate(name string) (string, bool) {
	exe, ok := s[name]
	return exe, ok && exe != ""
}

// browserFor maps a plugin scaffold variant to the browser that hosts it.
var browserFor = map[string]string{
	"activex": "iexplore",
	"npapi":   "firefox",
	"safari":  "safari",
}

// DebugCommand returns the executable used to debug p, or "" for projects that are not plugins
// or whose browser is unknown.
func DebugCommand(loc Locator, p *project.Project) string {
	if loc == nil || len(p.Scaffolds) == 0 {
		return ""
	}
	name, ok := browserFor[p.Scaffolds[0]]
	if !ok {
		return ""
	}
	exe, ok := loc.Locate(name)
	if !ok {
		msg.Warn("%s: browser %q not found, no debug command", p.Name, name)
		return ""
	}
	return exe
}
