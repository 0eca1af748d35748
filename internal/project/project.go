package project

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

var ErrUnresolvedDependency = errors.New("unresolved project dependency")

// UnresolvedError names a dependency that is not in the project registry.
type UnresolvedError struct {
	Project    string
	Dependency string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("project %q depends on %q, which was never configured", e.Project, e.Dependency)
}

func (e *UnresolvedError) Unwrap() error { return ErrUnresolvedDependency }

// guidNamespace seeds the name based GUIDs of projects, solutions and filters.
var guidNamespace = uuid.MustParse("5b2c4d0e-8f5e-4c47-9d1a-6f1f0c3a2e77")

// NameGUID derives a stable, braced, upper-case GUID from a name.
func NameGUID(kind, name string) string {
	return "{" + strings.ToUpper(uuid.NewSHA1(guidNamespace, []byte(kind+":"+name)).String()) + "}"
}

// normalizeGUID braces and upper-cases a user supplied GUID.
func normalizeGUID(s string) string {
	s = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(s), "{"), "}")
	return "{" + strings.ToUpper(s) + "}"
}

// SourceEntry is a literal file or a directory scanned at generation time.
type SourceEntry struct {
	Path      string
	Dir       bool
	Recursive bool
}

// LibInput is a library linked in release and debug builds.
type LibInput struct {
	Release string
	Debug   string
}

// Reference is an assembly reference of a managed project.
type Reference struct {
	Name    string
	Version string
}

// FileCopy copies Src (root relative) to Dst (relative to the target's project dir).
type FileCopy struct {
	Src string
	Dst string
}

// Project is one compilation or packaging unit.
type Project struct {
	Name       string
	Kind       Kind
	GUID       string
	OutputDir  string
	OutputName string

	Sources              []SourceEntry
	Includes             []string
	Defines              []string
	DisabledWarnings     []string
	LibDirs              []string
	LibInputs            []LibInput
	IgnoreDefaultLibs    []string
	Dependencies         []string
	References           []Reference
	Copies               []FileCopy
	ModuleDefinitionFile string
	Subsystem            string
	Scaffolds            []string

	deferredLibs []string
}

// New creates a project. An empty guid is derived from the name.
func New(name string, kind Kind, guid string) *Project {
	if guid == "" {
		guid = NameGUID("project", name)
	} else {
		guid = normalizeGUID(guid)
	}
	return &Project{Name: name, Kind: kind, GUID: guid}
}

func (p *Project) AddSourceDir(path string, recursive bool) {
	p.Sources = append(p.Sources, SourceEntry{Path: path, Dir: true, Recursive: recursive})
}

func (p *Project) AddSourceFile(path string) {
	p.Sources = append(p.Sources, SourceEntry{Path: path})
}

func (p *Project) AddIncludePath(path string) {
	p.Includes = append(p.Includes, path)
}

// MergeIncludes appends the paths that are not present yet.
func (p *Project) MergeIncludes(paths []string) {
	for _, path := range paths {
		if !slices.Contains(p.Includes, path) {
			p.Includes = append(p.Includes, path)
		}
	}
}

// AddDefine adds NAME or NAME=value.
func (p *Project) AddDefine(name, value string) {
	if value != "" {
		name += "=" + value
	}
	p.Defines = append(p.Defines, name)
}

// IsDefined reports whether name was defined, with or without a value.
func (p *Project) IsDefined(name string) bool {
	for _, d := range p.Defines {
		if d == name || strings.HasPrefix(d, name+"=") {
			return true
		}
	}
	return false
}

func (p *Project) DisableWarning(w string) {
	p.DisabledWarnings = append(p.DisabledWarnings, w)
}

func (p *Project) AddLibDir(path string) {
	p.LibDirs = append(p.LibDirs, path)
}

// AddLibInput adds a library; debug defaults to release.
func (p *Project) AddLibInput(release, debug string) {
	if debug == "" {
		debug = release
	}
	p.LibInputs = append(p.LibInputs, LibInput{Release: release, Debug: debug})
}

func (p *Project) AddIgnoreDefaultLib(lib string) {
	p.IgnoreDefaultLibs = append(p.IgnoreDefaultLibs, lib)
}

func (p *Project) AddDependency(name string) {
	if !slices.Contains(p.Dependencies, name) {
		p.Dependencies = append(p.Dependencies, name)
	}
}

func (p *Project) RemoveDependency(name string) {
	p.Dependencies = slices.DeleteFunc(p.Dependencies, func(d string) bool { return d == name })
}

func (p *Project) AddReference(name, version string) {
	p.References = append(p.References, Reference{Name: name, Version: version})
}

func (p *Project) CopyFileToProject(src, dst string) {
	p.Copies = append(p.Copies, FileCopy{Src: src, Dst: dst})
}

func (p *Project) SetModuleDefinitionFile(path string) { p.ModuleDefinitionFile = path }
func (p *Project) SetSubsystem(s string)               { p.Subsystem = s }

// AddScaffold requests a browser plugin scaffold variant for this project.
func (p *Project) AddScaffold(variant string) {
	if !slices.Contains(p.Scaffolds, variant) {
		p.Scaffolds = append(p.Scaffolds, variant)
	}
}

// DeferLib queues a library inclusion until the project is closed.
func (p *Project) DeferLib(name string) {
	p.deferredLibs = append(p.deferredLibs, name)
}

// TakeDeferredLibs empties and returns the deferred queue.
func (p *Project) TakeDeferredLibs() []string {
	libs := p.deferredLibs
	p.deferredLibs = nil
	return libs
}

func dedup[T comparable](s []T) []T {
	out := s[:0]
	seen := make(map[T]struct{}, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Validate runs the fixups done once when the project is closed.
func (p *Project) Validate() {
	p.Includes = dedup(p.Includes)
	p.Defines = dedup(p.Defines)
	p.LibDirs = dedup(p.LibDirs)
	p.LibInputs = dedup(p.LibInputs)
	p.DisabledWarnings = dedup(p.DisabledWarnings)
	p.IgnoreDefaultLibs = dedup(p.IgnoreDefaultLibs)

	if p.OutputName == "" {
		p.OutputName = p.Name
	}
	// the DLL half of a shared app must not clash with its launcher executable
	if p.Kind == SharedApp && !strings.HasSuffix(p.OutputName, " DLL") {
		p.OutputName += " DLL"
	}
}

// Lookup resolves a project by name.
type Lookup func(name string) (*Project, bool)

// ValidateDependencies checks that every dependency is a configured project.
func (p *Project) ValidateDependencies(lookup Lookup) error {
	for _, dep := range p.Dependencies {
		if _, ok := lookup(dep); !ok {
			return &UnresolvedError{Project: p.Name, Dependency: dep}
		}
	}
	return nil
}
