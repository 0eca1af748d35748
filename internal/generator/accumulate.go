package generator

import "github.com/qobs-build/projgen/internal/project"

// with runs fn on the open project, or fails with ErrNoProject.
func (g *Generator) with(op string, fn func(p *project.Project)) error {
	p, err := g.Current(op)
	if err != nil {
		return err
	}
	fn(p)
	return nil
}

func (g *Generator) AddSourceDir(path string, recursive bool) error {
	return g.with("addSrcDir", func(p *project.Project) { p.AddSourceDir(path, recursive) })
}

func (g *Generator) AddSourceFile(path string) error {
	return g.with("addSrcFile", func(p *project.Project) { p.AddSourceFile(path) })
}

func (g *Generator) AddIncludePath(path string) error {
	return g.with("addIncludePath", func(p *project.Project) { p.AddIncludePath(path) })
}

func (g *Generator) AddDefine(name, value string) error {
	return g.with("addDefine", func(p *project.Project) { p.AddDefine(name, value) })
}

func (g *Generator) IsDefined(name string) (bool, error) {
	p, err := g.Current("isDefined")
	if err != nil {
		return false, err
	}
	return p.IsDefined(name), nil
}

func (g *Generator) DisableWarning(w string) error {
	return g.with("disableWarning", func(p *project.Project) { p.DisableWarning(w) })
}

func (g *Generator) AddLibDir(path string) error {
	return g.with("addLibDir", func(p *project.Project) { p.AddLibDir(path) })
}

func (g *Generator) AddLibInput(release, debug string) error {
	return g.with("addLibInput", func(p *project.Project) { p.AddLibInput(release, debug) })
}

func (g *Generator) AddIgnoreDefaultLib(lib string) error {
	return g.with("addIgnoreDefaultLib", func(p *project.Project) { p.AddIgnoreDefaultLib(lib) })
}

func (g *Generator) AddDependency(name string) error {
	return g.with("addDependency", func(p *project.Project) { p.AddDependency(name) })
}

func (g *Generator) RemoveDependency(name string) error {
	return g.with("removeDependency", func(p *project.Project) { p.RemoveDependency(name) })
}

func (g *Generator) AddReference(name, version string) error {
	return g.with("addReference", func(p *project.Project) { p.AddReference(name, version) })
}

func (g *Generator) CopyFileToProject(src, dst string) error {
	return g.with("copyFileToProject", func(p *project.Project) { p.CopyFileToProject(src, dst) })
}

func (g *Generator) SetModuleDefinitionFile(path string) error {
	return g.with("setModuleDefinitionFile", func(p *project.Project) { p.SetModuleDefinitionFile(path) })
}

func (g *Generator) SetSubsystem(s string) error {
	return g.with("setSubsystem", func(p *project.Project) { p.SetSubsystem(s) })
}

func (g *Generator) SetOutputDir(dir string) error {
	return g.with("setOutputDir", func(p *project.Project) { p.OutputDir = dir })
}

func (g *Generator) SetOutputName(name string) error {
	return g.with("setOutputName", func(p *project.Project) { p.OutputName = name })
}
