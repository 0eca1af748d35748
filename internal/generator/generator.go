package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/qobs-build/projgen/internal/config"
	"github.com/qobs-build/projgen/internal/msg"
	"github.com/qobs-build/projgen/internal/plugin"
	"github.com/qobs-build/projgen/internal/project"
	"github.com/qobs-build/projgen/internal/solution"
	"github.com/qobs-build/projgen/internal/target"
)

// ConfigDir is where build descriptions and their fragments live, relative to the root.
const ConfigDir = "buildFiles/config"

// FragmentLoader runs a build description file against the generator.
type FragmentLoader interface {
	RunFile(path string) error
}

type Options struct {
	Root     string
	Platform string
	Targets  *target.Registry
	Settings *config.Settings
	Loader   FragmentLoader
}

// ProjectHandle refers to the project opened by a BeginProject call.
type ProjectHandle struct {
	id   uint64
	Name string
}

// SolutionHandle refers to the solution opened by a BeginSolution call.
type SolutionHandle struct {
	id   uint64
	Name string
}

// Generator collects projects and solutions from configuration calls and writes them out.
// Configuration is single threaded: at most one project and one solution are open at a time.
type Generator struct {
	root     string
	platform string
	targets  *target.Registry
	settings *config.Settings
	loader   FragmentLoader

	projects  *project.Registry
	solutions *solution.Registry

	seq         uint64
	current     *project.Project
	currentID   uint64
	curSolution *solution.Solution
	solutionID  uint64

	libGuard map[string]struct{}
	includes []string
	startup  string
}

func New(opts Options) *Generator {
	settings := opts.Settings
	if settings == nil {
		settings = config.Defaults()
	}
	platform := opts.Platform
	if platform == "" {
		platform = settings.Platform
	}
	targets := opts.Targets
	if targets == nil {
		targets = target.NewRegistry()
	}
	return &Generator{
		root:      opts.Root,
		platform:  platform,
		targets:   targets,
		settings:  settings,
		loader:    opts.Loader,
		projects:  project.NewRegistry(),
		solutions: solution.NewRegistry(),
		libGuard:  make(map[string]struct{}),
		startup:   settings.StartupProject,
	}
}

// SetLoader sets the loader used for library, module and project code fragments.
func (g *Generator) SetLoader(l FragmentLoader) { g.loader = l }

func (g *Generator) Root() string                { return g.root }
func (g *Generator) Platform() string            { return g.platform }
func (g *Generator) Settings() *config.Settings  { return g.settings }
func (g *Generator) Targets() *target.Registry   { return g.targets }
func (g *Generator) Projects() *project.Registry { return g.projects }
func (g *Generator) Solutions() *solution.Registry {
	return g.solutions
}

// Includes returns the include paths accumulated from libraries so far.
func (g *Generator) Includes() []string { return slices.Clone(g.includes) }

func (g *Generator) configPath(parts ...string) string {
	return filepath.Join(append([]string{g.root, filepath.FromSlash(ConfigDir)}, parts...)...)
}

//
// projects
//

// BeginProject opens a new project. An empty guid is derived from the name.
func (g *Generator) BeginProject(name string, kind project.Kind, guid string) (ProjectHandle, error) {
	if g.current != nil {
		return ProjectHandle{}, &ContextError{Op: "beginProject", Name: name, Err: ErrProjectOpen}
	}
	if _, ok := g.projects.Get(name); ok {
		return ProjectHandle{}, &ContextError{Op: "beginProject", Name: name, Err: ErrDuplicateProject}
	}

	p := project.New(name, kind, guid)
	if v, ok := plugin.ForKind(kind); ok {
		p.AddScaffold(string(v))
	}

	g.seq++
	g.current = p
	g.currentID = g.seq
	msg.Debug("begin %s %s", kind, name)
	return ProjectHandle{id: g.seq, Name: name}, nil
}

// BeginNPPlugin opens a shared library project that also gets the NPAPI plugin scaffold.
func (g *Generator) BeginNPPlugin(name, guid string) (ProjectHandle, error) {
	h, err := g.BeginProject(name, project.SharedLib, guid)
	if err != nil {
		return h, err
	}
	g.current.AddScaffold(string(plugin.NPAPI))
	return h, nil
}

// Current returns the open project.
func (g *Generator) Current(op string) (*project.Project, error) {
	if g.current == nil {
		return nil, &ContextError{Op: op, Err: ErrNoProject}
	}
	return g.current, nil
}

func (g *Generator) EndProject(h ProjectHandle) error {
	if g.current == nil {
		return &ContextError{Op: "endProject", Name: h.Name, Err: ErrNoProject}
	}
	if h.id != g.currentID {
		return &ContextError{Op: "endProject", Name: h.Name, Err: ErrStaleHandle}
	}
	return g.closeProject()
}

// EndProjectKind closes the open project after checking that it is of the given kind.
func (g *Generator) EndProjectKind(kind project.Kind) error {
	if g.current == nil {
		return &ContextError{Op: "endProject", Err: ErrNoProject}
	}
	if g.current.Kind != kind {
		return &ContextError{
			Op:   "endProject",
			Name: g.current.Name,
			Err:  fmt.Errorf("%w: open project is %s, not %s", ErrKindMismatch, g.current.Kind, kind),
		}
	}
	return g.closeProject()
}

func (g *Generator) closeProject() error {
	p := g.current
	p.Validate()

	for _, v := range p.Scaffolds {
		for _, artifact := range plugin.Artifacts(plugin.Variant(v), p, g.settings.Deployment) {
			p.AddSourceFile(artifact)
		}
	}

	if p.Kind.IsLibrary() {
		g.mergeIncludes(p.Includes)
	}

	if !g.projects.Add(p) {
		return &ContextError{Op: "endProject", Name: p.Name, Err: ErrDuplicateProject}
	}
	g.current = nil
	msg.Debug("end %s %s", p.Kind, p.Name)

	// libraries requested inside the project are configured now that the slot is free
	for _, lib := range p.TakeDeferredLibs() {
		if err := g.IncludeLib(lib); err != nil {
			return err
		}
	}

	if p.Kind == project.App || p.Kind == project.SharedApp {
		p.MergeIncludes(g.includes)
	}
	return nil
}

func (g *Generator) mergeIncludes(paths []string) {
	for _, path := range paths {
		if !slices.Contains(g.includes, path) {
			g.includes = append(g.includes, path)
		}
	}
}

// AddLibIncludePath adds a path straight to the include paths every application receives.
func (g *Generator) AddLibIncludePath(path string) {
	g.mergeIncludes([]string{path})
}

//
// fragments
//

func (g *Generator) runFragment(path string) error {
	if g.loader == nil {
		return ErrNoLoader
	}
	return g.loader.RunFile(path)
}

// IncludeLib configures the library fragment libs/<name>.conf once per run. Inside a project
// the inclusion is deferred until that project is closed.
func (g *Generator) IncludeLib(name string) error {
	if g.current != nil {
		g.current.DeferLib(name)
		return nil
	}
	if _, ok := g.libGuard[name]; ok {
		return nil
	}
	g.libGuard[name] = struct{}{}

	msg.Debug("include library %s", name)
	if err := g.runFragment(g.configPath("libs", name+".conf")); err != nil {
		return fmt.Errorf("library %q: %w", name, err)
	}
	if g.current != nil {
		return &ContextError{Op: "includeLib", Name: name, Err: ErrUnclosedContext}
	}
	return nil
}

// IncludeModule runs modules/<name>.conf in the current context, every time it is called.
func (g *Generator) IncludeModule(name string) error {
	msg.Debug("include module %s", name)
	if err := g.runFragment(g.configPath("modules", name+".conf")); err != nil {
		return fmt.Errorf("module %q: %w", name, err)
	}
	return nil
}

// IncludeProjectCode runs projectCode.conf when it exists.
func (g *Generator) IncludeProjectCode() error {
	path := g.configPath("projectCode.conf")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		msg.Warn("%s does not exist, no project code included", filepath.ToSlash(path))
		return nil
	}
	if err := g.runFragment(path); err != nil {
		return fmt.Errorf("project code: %w", err)
	}
	return nil
}

//
// solutions
//

func (g *Generator) BeginSolution(name string) (SolutionHandle, error) {
	if g.curSolution != nil {
		return SolutionHandle{}, &ContextError{Op: "beginSolution", Name: name, Err: ErrSolutionOpen}
	}
	if _, ok := g.solutions.Get(name); ok {
		return SolutionHandle{}, &ContextError{Op: "beginSolution", Name: name, Err: ErrDuplicateSolution}
	}
	g.seq++
	g.curSolution = solution.New(name)
	g.solutionID = g.seq
	return SolutionHandle{id: g.seq, Name: name}, nil
}

func (g *Generator) EndSolution(h SolutionHandle) error {
	if g.curSolution == nil {
		return &ContextError{Op: "endSolution", Name: h.Name, Err: ErrNoSolution}
	}
	if h.id != g.solutionID {
		return &ContextError{Op: "endSolution", Name: h.Name, Err: ErrStaleHandle}
	}
	return g.EndCurrentSolution()
}

// EndCurrentSolution closes whichever solution is open.
func (g *Generator) EndCurrentSolution() error {
	s := g.curSolution
	if s == nil {
		return &ContextError{Op: "endSolution", Err: ErrNoSolution}
	}
	if !g.solutions.Add(s) {
		return &ContextError{Op: "endSolution", Name: s.Name, Err: ErrDuplicateSolution}
	}
	g.curSolution = nil
	return nil
}

func (g *Generator) currentSolution(op string) (*solution.Solution, error) {
	if g.curSolution == nil {
		return nil, &ContextError{Op: op, Err: ErrNoSolution}
	}
	return g.curSolution, nil
}

func (g *Generator) AddProjectRef(name string) error {
	s, err := g.currentSolution("addProjectRef")
	if err != nil {
		return err
	}
	s.AddProjectRef(name)
	return nil
}

func (g *Generator) AddExternalProjectRef(name, path, guid, typeGUID string) error {
	s, err := g.currentSolution("addExternalProjectRef")
	if err != nil {
		return err
	}
	s.AddExternalProjectRef(name, path, guid, typeGUID)
	return nil
}

// SolutionTarget restricts the open solution to the named build targets.
func (g *Generator) SolutionTarget(names ...string) error {
	s, err := g.currentSolution("solutionTarget")
	if err != nil {
		return err
	}
	for _, n := range names {
		if _, err := g.targets.Get(n); err != nil {
			return err
		}
	}
	s.RestrictTargets(names...)
	return nil
}

// SetStartupProject picks the project listed first in solutions.
func (g *Generator) SetStartupProject(name string) {
	g.startup = name
}
