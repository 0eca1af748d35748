package solution

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/qobs-build/projgen/internal/msg"
	"github.com/qobs-build/projgen/internal/pathutil"
	"github.com/qobs-build/projgen/internal/project"
	"github.com/qobs-build/projgen/internal/render"
	"github.com/qobs-build/projgen/internal/target"
)

var ErrUnresolvedProject = errors.New("unresolved solution reference")

type UnresolvedError struct {
	Solution string
	Project  string
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("solution %q references %q, which was never configured", e.Solution, e.Project)
}

func (e *UnresolvedError) Unwrap() error { return ErrUnresolvedProject }

// ExternalRef is a project file that is not generated by us, e.g. a hand written C# tool.
type ExternalRef struct {
	Name     string
	Path     string
	GUID     string
	TypeGUID string
}

// Solution groups projects for an IDE.
type Solution struct {
	Name     string
	GUID     string
	Projects []string
	External []ExternalRef

	targets []string
}

func New(name string) *Solution {
	return &Solution{Name: name, GUID: project.NameGUID("solution", name)}
}

func (s *Solution) AddProjectRef(name string) {
	if !slices.Contains(s.Projects, name) {
		s.Projects = append(s.Projects, name)
	}
}

// AddExternalProjectRef adds a prebuilt project file. path is root relative; an empty typeGUID
// means a C# project and an empty guid is derived from the name.
func (s *Solution) AddExternalProjectRef(name, path, guid, typeGUID string) {
	if typeGUID == "" {
		typeGUID = project.TypeGUIDCSharp
	}
	if guid == "" {
		guid = project.NameGUID("external", name)
	}
	s.External = append(s.External, ExternalRef{Name: name, Path: path, GUID: guid, TypeGUID: typeGUID})
}

// RestrictTargets limits generation to the named build targets. Without a restriction every
// supporting target gets the solution.
func (s *Solution) RestrictTargets(names ...string) {
	for _, n := range names {
		if !slices.Contains(s.targets, n) {
			s.targets = append(s.targets, n)
		}
	}
}

func (s *Solution) wants(t *target.BuildTarget) bool {
	return len(s.targets) == 0 || slices.Contains(s.targets, t.Name)
}

// Order returns the project references with startup moved to the front, when present. The
// other references keep their relative order.
func (s *Solution) Order(startup string) []string {
	out := make([]string, 0, len(s.Projects))
	if startup != "" && slices.Contains(s.Projects, startup) {
		out = append(out, startup)
	}
	for _, name := range s.Projects {
		if name != startup {
			out = append(out, name)
		}
	}
	return out
}

// ProjectView is a project entry of a solution file.
type ProjectView struct {
	Name         string
	GUID         string
	File         string
	TypeGUID     string
	Dependencies []string
}

// View is the data handed to solution templates.
type View struct {
	Name     string
	GUID     string
	Projects []ProjectView
	External []ExternalRef
	Platform string
	Revision string
	Flags    map[string]any
	Target   *target.BuildTarget
}

// Generate checks every reference and the dependencies of every referenced project, then writes
// one solution per supporting target. Nothing is written when a check fails.
func (s *Solution) Generate(rc *project.RenderContext, startup string) error {
	order := s.Order(startup)
	projects := make([]*project.Project, 0, len(order))
	for _, name := range order {
		p, ok := rc.Lookup(name)
		if !ok {
			return &UnresolvedError{Solution: s.Name, Project: name}
		}
		projects = append(projects, p)
	}
	for _, p := range projects {
		if err := p.ValidateDependencies(rc.Lookup); err != nil {
			return fmt.Errorf("solution %q: %w", s.Name, err)
		}
	}

	for _, t := range rc.Targets.Supporting(rc.Platform) {
		if !s.wants(t) {
			continue
		}
		if t.SolutionTemplate == "" {
			msg.Debug("%s: target %s has no solution template", s.Name, t.Name)
			continue
		}

		data, err := rc.Engine.Render(t.SolutionTemplate, s.view(rc, t, projects))
		if errors.Is(err, render.ErrTemplateNotFound) {
			msg.Warn("%s: %v, skipping target %s", s.Name, err, t.Name)
			continue
		}
		if err != nil {
			return fmt.Errorf("solution %q, target %q: %w", s.Name, t.Name, err)
		}

		out := filepath.Join(rc.Root, filepath.FromSlash(t.OutputDir), s.Name+t.SolutionExt)
		if err := rc.Emitter.Write(out, data); err != nil {
			return err
		}
	}
	return nil
}

func (s *Solution) view(rc *project.RenderContext, t *target.BuildTarget, projects []*project.Project) *View {
	v := &View{
		Name:     s.Name,
		GUID:     s.GUID,
		Platform: rc.Platform,
		Revision: rc.Revision,
		Flags:    rc.Flags,
		Target:   t,
	}
	if v.Flags == nil {
		v.Flags = map[string]any{}
	}

	// projects without a template for this target have no file to reference
	rendered := func(p *project.Project) bool { return t.Template(p.Kind.Key()) != "" }

	for _, p := range projects {
		if !rendered(p) {
			continue
		}
		pv := ProjectView{
			Name:     p.Name,
			GUID:     p.GUID,
			File:     p.Name + t.ExtFor(p.Kind.Key()),
			TypeGUID: p.Kind.TypeGUID(),
		}
		for _, name := range p.Dependencies {
			if dep, ok := rc.Lookup(name); ok && rendered(dep) {
				pv.Dependencies = append(pv.Dependencies, dep.GUID)
			}
		}
		v.Projects = append(v.Projects, pv)
	}

	for _, ext := range s.External {
		ext.Path = pathutil.Reroot(t.BaseDir, ext.Path)
		if t.WindowsPaths {
			ext.Path = pathutil.ToWindows(ext.Path)
		}
		v.External = append(v.External, ext)
	}
	return v
}

// Registry keeps finalized solutions by name, in registration order.
type Registry struct {
	byName map[string]*Solution
	order  []*Solution
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Solution)}
}

// Add registers s and reports false if the name is taken.
func (r *Registry) Add(s *Solution) bool {
	if _, ok := r.byName[s.Name]; ok {
		return false
	}
	r.byName[s.Name] = s
	r.order = append(r.order, s)
	return true
}

func (r *Registry) Get(name string) (*Solution, bool) {
	s, ok := r.byName[name]
	return s, ok
}

func (r *Registry) All() []*Solution {
	return append([]*Solution(nil), r.order...)
}
