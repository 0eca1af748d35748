package target

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

var (
	ErrFrozen          = errors.New("build target is registered and can no longer be changed")
	ErrBadPattern      = errors.New("invalid path pattern")
	ErrDuplicateTarget = errors.New("build target already registered")
	ErrUnknownTarget   = errors.New("unknown build target")
)

// Template keys, one per project kind plus the solution.
const (
	KeyApp       = "app"
	KeySharedApp = "shared_app"
	KeyLib       = "lib"
	KeySharedLib = "shared_lib"
	KeyActiveX   = "activex"
	KeySafari    = "safari"
	KeyManaged   = "managed"
)

// BuildTarget describes one toolchain/platform output: which templates render which project
// kinds, where the results go and which files belong in a generated project.
type BuildTarget struct {
	Name       string
	OutputDir  string // project and solution files, relative to the root
	ProjectDir string // per-target working area, relative to the root
	BaseDir    string // from OutputDir back to the root, e.g. "../../"

	SolutionTemplate string
	OutputExt        string
	SolutionExt      string
	WindowsPaths     bool
	Filters          bool

	templates   map[string]string
	kindExt     map[string]string
	fileExts    []string
	sourceExts  []string
	reject      []string
	dontCompile []string
	platforms   []string
	frozen      bool
}

// New creates an unregistered target. templates maps a kind key (see the Key constants) to a
// template name.
func New(name, outputDir, projectDir, baseDir string, templates map[string]string, solutionTemplate, outputExt string) *BuildTarget {
	t := &BuildTarget{
		Name:             name,
		OutputDir:        outputDir,
		ProjectDir:       projectDir,
		BaseDir:          baseDir,
		SolutionTemplate: solutionTemplate,
		OutputExt:        outputExt,
		templates:        make(map[string]string, len(templates)),
		kindExt:          make(map[string]string),
	}
	for k, v := range templates {
		t.templates[k] = v
	}
	return t
}

func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" && !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}

func validatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("%w: %q", ErrBadPattern, p)
		}
	}
	return nil
}

func (t *BuildTarget) mutable() error {
	if t.frozen {
		return fmt.Errorf("%s: %w", t.Name, ErrFrozen)
	}
	return nil
}

func (t *BuildTarget) SetFileExtensions(exts ...string) error {
	if err := t.mutable(); err != nil {
		return err
	}
	t.fileExts = normalizeExts(exts)
	return nil
}

func (t *BuildTarget) SetSourceFileExtensions(exts ...string) error {
	if err := t.mutable(); err != nil {
		return err
	}
	t.sourceExts = normalizeExts(exts)
	return nil
}

// SetRejectPatterns sets doublestar patterns; any matching path is left out of projects.
func (t *BuildTarget) SetRejectPatterns(patterns ...string) error {
	if err := t.mutable(); err != nil {
		return err
	}
	if err := validatePatterns(patterns); err != nil {
		return err
	}
	t.reject = slices.Clone(patterns)
	return nil
}

// SetDontCompilePatterns sets doublestar patterns for files that are listed but not compiled.
func (t *BuildTarget) SetDontCompilePatterns(patterns ...string) error {
	if err := t.mutable(); err != nil {
		return err
	}
	if err := validatePatterns(patterns); err != nil {
		return err
	}
	t.dontCompile = slices.Clone(patterns)
	return nil
}

func (t *BuildTarget) SetPlatforms(platforms ...string) error {
	if err := t.mutable(); err != nil {
		return err
	}
	t.platforms = slices.Clone(platforms)
	return nil
}

// SetKindExt overrides OutputExt for one kind key (e.g. ".csproj" for managed projects).
func (t *BuildTarget) SetKindExt(key, ext string) error {
	if err := t.mutable(); err != nil {
		return err
	}
	t.kindExt[key] = ext
	return nil
}

func (t *BuildTarget) Platforms() []string { return slices.Clone(t.platforms) }

func (t *BuildTarget) SupportsPlatform(tag string) bool {
	return slices.Contains(t.platforms, tag)
}

func matchAny(patterns []string, p string) bool {
	for _, pat := range patterns {
		if ok, _ := doublestar.Match(pat, p); ok {
			return true
		}
	}
	return false
}

// RuleReject reports whether any reject pattern matches the slash separated path.
func (t *BuildTarget) RuleReject(p string) bool {
	return matchAny(t.reject, p)
}

// DontCompile reports whether p is listed in projects without being compiled.
func (t *BuildTarget) DontCompile(p string) bool {
	return matchAny(t.dontCompile, p)
}

func ext(p string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// AllowedFileExt reports whether p has an accepted extension. A target without accepted
// extensions takes every file.
func (t *BuildTarget) AllowedFileExt(p string) bool {
	if len(t.fileExts) == 0 {
		return true
	}
	return slices.Contains(t.fileExts, ext(p))
}

func (t *BuildTarget) IsSourceFile(p string) bool {
	return slices.Contains(t.sourceExts, ext(p))
}

// Template returns the template name for a kind key, or "" when this target does not render it.
func (t *BuildTarget) Template(key string) string {
	return t.templates[key]
}

// ExtFor returns the project file extension for a kind key.
func (t *BuildTarget) ExtFor(key string) string {
	if e, ok := t.kindExt[key]; ok {
		return e
	}
	return t.OutputExt
}
