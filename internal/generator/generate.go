package generator

import (
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/qobs-build/projgen/internal/browser"
	"github.com/qobs-build/projgen/internal/msg"
	"github.com/qobs-build/projgen/internal/pathutil"
	"github.com/qobs-build/projgen/internal/plugin"
	"github.com/qobs-build/projgen/internal/project"
	"github.com/qobs-build/projgen/internal/render"
	"github.com/qobs-build/projgen/internal/target"
)

type GenerateOptions struct {
	Jobs     int // concurrent file tree scans, <= 1 scans sequentially
	Engine   *render.Engine
	Emitter  *render.Emitter
	Locator  browser.Locator
	Revision string
	Progress io.Writer // optional progress bar output
}

type scanJob struct {
	p    *project.Project
	t    *target.BuildTarget
	tree []pathutil.FileNode
}

// renders reports whether any target of the active platform has a template for p.
func (g *Generator) renders(p *project.Project) bool {
	for _, t := range g.targets.Supporting(g.platform) {
		if t.Template(p.Kind.Key()) != "" {
			return true
		}
	}
	return false
}

// prefetch scans the file trees of every (project, target) pair. Each job writes only its own
// slot; the results are stored in job order afterwards.
func (g *Generator) prefetch(rc *project.RenderContext, jobs int) error {
	var work []*scanJob
	for _, p := range g.projects.All() {
		for _, t := range g.targets.Supporting(g.platform) {
			if t.Template(p.Kind.Key()) != "" {
				work = append(work, &scanJob{p: p, t: t})
			}
		}
	}

	var eg errgroup.Group
	eg.SetLimit(max(jobs, 1))
	for _, job := range work {
		eg.Go(func() error {
			tree, err := project.ScanFiles(g.root, job.p, job.t)
			if err != nil {
				return err
			}
			job.tree = tree
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, job := range work {
		rc.SetTree(job.p, job.t, job.tree)
	}
	return nil
}

// Generate writes every configured project, solution and plugin scaffold for the platform.
func (g *Generator) Generate(opts GenerateOptions) error {
	if g.current != nil {
		return &ContextError{Op: "generate", Name: g.current.Name, Err: ErrUnclosedContext}
	}
	if g.curSolution != nil {
		return &ContextError{Op: "generate", Name: g.curSolution.Name, Err: ErrUnclosedContext}
	}

	engine := opts.Engine
	if engine == nil {
		engine = render.NewEngine()
	}
	emitter := opts.Emitter
	if emitter == nil {
		emitter = &render.Emitter{}
	}

	rc := &project.RenderContext{
		Root:     g.root,
		Platform: g.platform,
		Targets:  g.targets,
		Engine:   engine,
		Emitter:  emitter,
		Lookup:   g.projects.Get,
		Flags:    g.settings.Flags.Vars(),
		Revision: opts.Revision,
		DebugCommand: func(p *project.Project) string {
			return browser.DebugCommand(opts.Locator, p)
		},
	}

	if err := g.prefetch(rc, opts.Jobs); err != nil {
		return err
	}

	projects := g.projects.All()
	solutions := g.solutions.All()

	var bar *msg.ProgressBar
	if opts.Progress != nil {
		bar = msg.NewProgressBar(len(projects)+len(solutions), 0, "generating ", opts.Progress)
		defer bar.Finish()
	}
	step := func() {
		if bar != nil {
			bar.Step()
		}
	}

	scaffold := &plugin.Scaffold{
		Root:       g.root,
		Engine:     engine,
		Emitter:    emitter,
		Deployment: g.settings.Deployment,
	}
	page := plugin.NewSamplePage()

	for _, p := range projects {
		scaffolds := p.Scaffolds
		if len(scaffolds) > 0 && !g.renders(p) {
			msg.Debug("%s: no %s target for %s, skipping plugin scaffold", p.Name, p.Kind.Key(), g.platform)
			scaffolds = nil
		}
		for _, v := range scaffolds {
			if err := scaffold.Generate(plugin.Variant(v), p, page); err != nil {
				return err
			}
		}
		if err := p.Generate(rc); err != nil {
			return err
		}
		step()
	}

	for _, s := range solutions {
		if err := s.Generate(rc, g.startup); err != nil {
			return err
		}
		step()
	}

	return page.Write(scaffold)
}
