package project

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/qobs-build/projgen/internal/pathutil"
	"github.com/qobs-build/projgen/internal/render"
	"github.com/qobs-build/projgen/internal/target"
)

var guidRe = regexp.MustCompile(`^\{[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}\}$`)

func TestNameGUID(t *testing.T) {
	a := NameGUID("project", "Game")
	if a != NameGUID("project", "Game") {
		t.Fatalf("NameGUID is not stable")
	}
	if !guidRe.MatchString(a) {
		t.Fatalf("bad GUID format %q", a)
	}
	if a == NameGUID("project", "Engine") || a == NameGUID("solution", "Game") {
		t.Fatalf("different names share a GUID")
	}

	p := New("Game", App, "12345678-abcd-abcd-abcd-1234567890ab")
	if p.GUID != "{12345678-ABCD-ABCD-ABCD-1234567890AB}" {
		t.Errorf("user GUID not normalized: %q", p.GUID)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"App", App},
		{"sharedlib", SharedLib},
		{"shared_app", SharedApp},
		{"activex", ActiveXPlugin},
		{"ManagedProject", ManagedProject},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseKind("exe"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestAccumulation(t *testing.T) {
	p := New("Game", SharedApp, "")
	p.AddIncludePath("include")
	p.AddIncludePath("include")
	p.AddDefine("DEBUG", "")
	p.AddDefine("LEVEL", "2")
	p.AddDependency("Engine")
	p.AddDependency("Engine")
	p.AddDependency("Audio")
	p.RemoveDependency("Engine")
	p.AddLibInput("zlib.lib", "")
	p.Validate()

	if !slices.Equal(p.Includes, []string{"include"}) {
		t.Errorf("Includes = %v", p.Includes)
	}
	if !p.IsDefined("DEBUG") || !p.IsDefined("LEVEL") || p.IsDefined("LEV") {
		t.Errorf("IsDefined mismatch for %v", p.Defines)
	}
	if !slices.Equal(p.Dependencies, []string{"Audio"}) {
		t.Errorf("Dependencies = %v", p.Dependencies)
	}
	if p.LibInputs[0].Debug != "zlib.lib" {
		t.Errorf("debug lib should default to release, got %q", p.LibInputs[0].Debug)
	}
	if p.OutputName != "Game DLL" {
		t.Errorf("OutputName = %q", p.OutputName)
	}

	p.Validate()
	if p.OutputName != "Game DLL" {
		t.Errorf("Validate is not idempotent: %q", p.OutputName)
	}
}

func TestMergeIncludes(t *testing.T) {
	p := New("Game", App, "")
	p.AddIncludePath("a")
	p.MergeIncludes([]string{"b", "a", "c", "b"})
	if !slices.Equal(p.Includes, []string{"a", "b", "c"}) {
		t.Errorf("Includes = %v", p.Includes)
	}
}

func TestValidateDependencies(t *testing.T) {
	reg := NewRegistry()
	engine := New("Engine", Lib, "")
	reg.Add(engine)
	if reg.Add(New("Engine", App, "")) {
		t.Fatalf("duplicate name accepted")
	}

	game := New("Game", App, "")
	game.AddDependency("Engine")
	if err := game.ValidateDependencies(reg.Get); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	game.AddDependency("Physics")
	err := game.ValidateDependencies(reg.Get)
	var ue *UnresolvedError
	if !errors.As(err, &ue) || ue.Dependency != "Physics" {
		t.Fatalf("expected UnresolvedError for Physics, got %v", err)
	}
	if !errors.Is(err, ErrUnresolvedDependency) {
		t.Errorf("error does not wrap ErrUnresolvedDependency")
	}
}

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("//"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func makeTarget(t *testing.T, templates map[string]string) *target.BuildTarget {
	t.Helper()
	bt := target.New("Make", "buildFiles/Make", "buildFiles/Make/obj", "../../", templates, "make/solution.mk.tmpl", ".mk")
	must := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	must(bt.SetPlatforms("linux"))
	must(bt.SetFileExtensions("cpp", "h", "inl"))
	must(bt.SetSourceFileExtensions("cpp"))
	must(bt.SetRejectPatterns("**/mac/**"))
	must(bt.SetDontCompilePatterns("**/*.inl"))
	return bt
}

func flatPaths(tree []pathutil.FileNode) map[string]bool {
	out := make(map[string]bool)
	for _, f := range pathutil.Flatten(tree) {
		out[f.Path] = f.Compile
	}
	return out
}

func TestScanFiles(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root,
		"src/a.cpp", "src/b.h", "src/c.inl", "src/notes.txt",
		"src/sub/d.cpp", "src/sub/deep/f.cpp", "src/mac/e.cpp",
	)
	bt := makeTarget(t, nil)

	tests := []struct {
		name  string
		setup func(p *Project)
		want  map[string]bool
	}{
		{
			name:  "flat directory",
			setup: func(p *Project) { p.AddSourceDir("src", false) },
			want:  map[string]bool{"src/a.cpp": true, "src/b.h": false, "src/c.inl": false},
		},
		{
			name:  "recursive directory",
			setup: func(p *Project) { p.AddSourceDir("src", true) },
			want:  map[string]bool{"src/a.cpp": true, "src/b.h": false, "src/c.inl": false, "src/sub/d.cpp": true, "src/sub/deep/f.cpp": true},
		},
		{
			name: "literal files skip the extension check",
			setup: func(p *Project) {
				p.AddSourceFile("src/notes.txt")
				p.AddSourceFile("./src/a.cpp")
				p.AddSourceFile("src/a.cpp")
				p.AddSourceFile("src/mac/e.cpp")
			},
			want: map[string]bool{"src/notes.txt": false, "src/a.cpp": true},
		},
		{
			name:  "missing directory",
			setup: func(p *Project) { p.AddSourceDir("nope", true) },
			want:  map[string]bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New("Game", App, "")
			tt.setup(p)
			tree, err := ScanFiles(root, p, bt)
			if err != nil {
				t.Fatalf("ScanFiles: %v", err)
			}
			got := flatPaths(tree)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for path, compile := range tt.want {
				c, ok := got[path]
				if !ok || c != compile {
					t.Errorf("%s: got (%v, %v), want compile=%v", path, c, ok, compile)
				}
			}
		})
	}
}

func newRenderContext(t *testing.T, root string, targets ...*target.BuildTarget) (*RenderContext, *Registry) {
	t.Helper()
	reg := target.NewRegistry()
	for _, bt := range targets {
		if err := reg.Register(bt); err != nil {
			t.Fatal(err)
		}
	}
	projects := NewRegistry()
	return &RenderContext{
		Root:     root,
		Platform: "linux",
		Targets:  reg,
		Engine:   render.NewEngine(),
		Emitter:  &render.Emitter{},
		Lookup:   projects.Get,
	}, projects
}

func TestGenerate(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "game/main.cpp", "game/game.h", "assets/icon.txt")

	bt := makeTarget(t, map[string]string{target.KeyApp: "make/project.mk.tmpl", target.KeyLib: "make/project.mk.tmpl"})
	rc, projects := newRenderContext(t, root, bt)

	engine := New("Engine", Lib, "")
	engine.Validate()
	projects.Add(engine)

	game := New("Game", App, "")
	game.AddSourceDir("game", false)
	game.AddIncludePath("engine/include")
	game.AddDependency("Engine")
	game.AddDependency("Ghost")
	game.CopyFileToProject("assets/icon.txt", "icon.txt")
	game.CopyFileToProject("assets/missing.txt", "missing.txt")
	game.Validate()
	projects.Add(game)

	if err := game.Generate(rc); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "buildFiles", "Make", "Game.mk"))
	if err != nil {
		t.Fatalf("project file not written: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		"../../game/main.cpp",
		`-I"../../engine/include"`,
		"Game: Engine $(Game_OBJS)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "game.h \\") {
		t.Errorf("header listed as a compiled source:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(root, "buildFiles", "Make", "obj", "icon.txt")); err != nil {
		t.Errorf("copy not performed: %v", err)
	}
}

func TestGenerateMissingTemplate(t *testing.T) {
	root := t.TempDir()
	bt := makeTarget(t, map[string]string{target.KeyApp: "make/nope.tmpl"})
	rc, _ := newRenderContext(t, root, bt)

	p := New("Game", App, "")
	p.Validate()
	if err := p.Generate(rc); err != nil {
		t.Fatalf("missing template should only warn, got %v", err)
	}
	if n := len(rc.Emitter.Written()); n != 0 {
		t.Errorf("expected no output, got %d files", n)
	}
}

func TestGenerateFilters(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "src/core/a.cpp", "src/core/a.h", "src/ui/b.cpp")

	bt := target.New("VS", "out", "out/projects", "../", map[string]string{target.KeyLib: "vs2010/project.vcxproj.tmpl"}, "", ".vcxproj")
	bt.WindowsPaths = true
	bt.Filters = true
	if err := bt.SetPlatforms("linux"); err != nil {
		t.Fatal(err)
	}
	if err := bt.SetSourceFileExtensions("cpp"); err != nil {
		t.Fatal(err)
	}
	rc, projects := newRenderContext(t, root, bt)

	p := New("Core", Lib, "")
	p.AddSourceDir("src", true)
	p.Validate()
	projects.Add(p)
	if err := p.Generate(rc); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "out", "Core.vcxproj.filters"))
	if err != nil {
		t.Fatalf("filters not written: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		`<Filter Include="src\core">`,
		`<ClCompile Include="..\src\ui\b.cpp">`,
		`<ClInclude Include="..\src\core\a.h">`,
		NameGUID("filter", `Core\src`),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("filters lack %q:\n%s", want, out)
		}
	}
}
