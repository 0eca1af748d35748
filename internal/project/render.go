package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/qobs-build/projgen/internal/msg"
	"github.com/qobs-build/projgen/internal/pathutil"
	"github.com/qobs-build/projgen/internal/render"
	"github.com/qobs-build/projgen/internal/target"
)

// RenderContext carries everything a project or solution needs to render itself.
type RenderContext struct {
	Root         string
	Platform     string
	Targets      *target.Registry
	Engine       *render.Engine
	Emitter      *render.Emitter
	Lookup       Lookup
	Flags        map[string]any
	Revision     string
	DebugCommand func(p *Project) string

	mu    sync.Mutex
	trees map[treeKey][]pathutil.FileNode
}

type treeKey struct {
	project, target string
}

// SetTree stores a precomputed file tree. Safe for concurrent use.
func (rc *RenderContext) SetTree(p *Project, t *target.BuildTarget, tree []pathutil.FileNode) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.trees == nil {
		rc.trees = make(map[treeKey][]pathutil.FileNode)
	}
	rc.trees[treeKey{p.Name, t.Name}] = tree
}

// FileTree returns the stored tree for (p, t) or scans it now.
func (rc *RenderContext) FileTree(p *Project, t *target.BuildTarget) ([]pathutil.FileNode, error) {
	rc.mu.Lock()
	tree, ok := rc.trees[treeKey{p.Name, t.Name}]
	rc.mu.Unlock()
	if ok {
		return tree, nil
	}
	tree, err := ScanFiles(rc.Root, p, t)
	if err != nil {
		return nil, err
	}
	rc.SetTree(p, t, tree)
	return tree, nil
}

func isAbs(p string) bool {
	return filepath.IsAbs(p) || strings.HasPrefix(p, "/") || len(p) >= 2 && p[1] == ':'
}

func cleanPath(p string) string {
	if isAbs(p) {
		return path.Clean(filepath.ToSlash(p))
	}
	return pathutil.CollapsePath(p)
}

func onDisk(root, p string) string {
	if isAbs(p) {
		return filepath.FromSlash(p)
	}
	return filepath.Join(root, filepath.FromSlash(p))
}

// ScanFiles lists the files of p that belong in a t project and returns them as a trimmed
// tree. Literal files skip the extension check; directories are globbed with "*" or, when
// recursive, "**/*".
func ScanFiles(root string, p *Project, t *target.BuildTarget) ([]pathutil.FileNode, error) {
	var leaves []*pathutil.Leaf
	seen := make(map[string]struct{})

	add := func(rel string, literal bool) {
		rel = cleanPath(rel)
		if _, ok := seen[rel]; ok {
			return
		}
		if t.RuleReject(rel) {
			msg.Debug("%s: rejected %s for %s", p.Name, rel, t.Name)
			return
		}
		if !literal && !t.AllowedFileExt(rel) {
			return
		}
		seen[rel] = struct{}{}
		leaves = append(leaves, &pathutil.Leaf{
			Path:    rel,
			Compile: t.IsSourceFile(rel) && !t.DontCompile(rel),
		})
	}

	for _, src := range p.Sources {
		if !src.Dir {
			add(src.Path, true)
			continue
		}

		dir := onDisk(root, src.Path)
		if stat, err := os.Stat(dir); err != nil || !stat.IsDir() {
			msg.Warn("%s: source directory %s does not exist", p.Name, src.Path)
			continue
		}

		pattern := "*"
		if src.Recursive {
			pattern = "**/*"
		}
		matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("while scanning %s: %w", src.Path, err)
		}
		for _, match := range matches {
			add(path.Join(filepath.ToSlash(src.Path), match), false)
		}
	}

	return pathutil.TrimFileList(pathutil.BuildTree(leaves)), nil
}

// FileView is one file as seen from the generated project file.
type FileView struct {
	Path    string
	Filter  string
	Compile bool
}

// DepView is a dependency as seen from the generated project file.
type DepView struct {
	Name string
	GUID string
	File string
}

// View is the data handed to project templates.
type View struct {
	Name                 string
	GUID                 string
	Kind                 string
	KindKey              string
	OutputName           string
	OutputDir            string
	ProjectDir           string
	ModuleDefinitionFile string
	Subsystem            string
	DebugCommand         string
	Platform             string
	Revision             string

	Files             []FileView
	Tree              []pathutil.FileNode
	Includes          []string
	Defines           []string
	DisabledWarnings  []string
	LibDirs           []string
	IgnoreDefaultLibs []string
	LibInputs         []LibInput
	References        []Reference
	Dependencies      []DepView
	Configurations    []string
	Flags             map[string]any
	Target            *target.BuildTarget
}

// pathConv re-roots root relative paths for files living in t's output directory.
func pathConv(t *target.BuildTarget) func(string) string {
	return func(p string) string {
		r := pathutil.Reroot(t.BaseDir, p)
		if r == "" {
			r = "."
		}
		if t.WindowsPaths {
			r = pathutil.ToWindows(r)
		}
		return r
	}
}

func mapStrings(in []string, fn func(string) string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fn(s)
	}
	return out
}

func (p *Project) view(rc *RenderContext, t *target.BuildTarget, tree []pathutil.FileNode) *View {
	conv := pathConv(t)

	v := &View{
		Name:              p.Name,
		GUID:              p.GUID,
		Kind:              p.Kind.String(),
		KindKey:           p.Kind.Key(),
		OutputName:        p.OutputName,
		OutputDir:         conv(p.OutputDir),
		ProjectDir:        conv(t.ProjectDir),
		Subsystem:         p.Subsystem,
		Platform:          rc.Platform,
		Revision:          rc.Revision,
		Tree:              tree,
		Includes:          mapStrings(p.Includes, conv),
		Defines:           p.Defines,
		DisabledWarnings:  p.DisabledWarnings,
		LibDirs:           mapStrings(p.LibDirs, conv),
		IgnoreDefaultLibs: p.IgnoreDefaultLibs,
		LibInputs:         p.LibInputs,
		References:        p.References,
		Configurations:    []string{"Debug", "Release"},
		Flags:             rc.Flags,
		Target:            t,
	}
	if v.Flags == nil {
		v.Flags = map[string]any{}
	}
	if p.ModuleDefinitionFile != "" {
		v.ModuleDefinitionFile = conv(p.ModuleDefinitionFile)
	}
	if rc.DebugCommand != nil {
		v.DebugCommand = rc.DebugCommand(p)
	}

	for _, f := range pathutil.Flatten(tree) {
		v.Files = append(v.Files, FileView{Path: conv(f.Path), Filter: f.Filter, Compile: f.Compile})
	}

	for _, name := range p.Dependencies {
		dep, ok := rc.Lookup(name)
		if !ok {
			msg.Warn("%s: dependency %q is not a configured project, leaving it out", p.Name, name)
			continue
		}
		v.Dependencies = append(v.Dependencies, DepView{
			Name: dep.Name,
			GUID: dep.GUID,
			File: dep.Name + t.ExtFor(dep.Kind.Key()),
		})
	}
	return v
}

// Generate writes one project file per build target that supports the platform and has a
// template for this kind.
func (p *Project) Generate(rc *RenderContext) error {
	key := p.Kind.Key()
	for _, t := range rc.Targets.Supporting(rc.Platform) {
		tmpl := t.Template(key)
		if tmpl == "" {
			msg.Debug("%s: target %s has no %s template", p.Name, t.Name, key)
			continue
		}

		tree, err := rc.FileTree(p, t)
		if err != nil {
			return fmt.Errorf("project %q: %w", p.Name, err)
		}
		view := p.view(rc, t, tree)

		data, err := rc.Engine.Render(tmpl, view)
		if errors.Is(err, render.ErrTemplateNotFound) {
			msg.Warn("%s: %v, skipping target %s", p.Name, err, t.Name)
			continue
		}
		if err != nil {
			return fmt.Errorf("project %q, target %q: %w", p.Name, t.Name, err)
		}

		out := filepath.Join(rc.Root, filepath.FromSlash(t.OutputDir), p.Name+t.ExtFor(key))
		if err := rc.Emitter.Write(out, data); err != nil {
			return err
		}

		if t.Filters && p.Kind != ManagedProject {
			if err := writeFilters(rc.Emitter, out+".filters", p, view.Files, tree); err != nil {
				return fmt.Errorf("project %q, target %q: %w", p.Name, t.Name, err)
			}
		}

		for _, c := range p.Copies {
			src := onDisk(rc.Root, c.Src)
			dst := filepath.Join(rc.Root, filepath.FromSlash(t.ProjectDir), filepath.FromSlash(c.Dst))
			if err := rc.Emitter.Copy(src, dst); err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					msg.Warn("%s: cannot copy %s: file does not exist", p.Name, c.Src)
					continue
				}
				return err
			}
		}
	}
	return nil
}
