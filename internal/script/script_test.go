package script

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/qobs-build/projgen/internal/config"
	"github.com/qobs-build/projgen/internal/generator"
	"github.com/qobs-build/projgen/internal/project"
	"github.com/qobs-build/projgen/internal/render"
	"github.com/qobs-build/projgen/internal/target"
)

func TestSplitStatements(t *testing.T) {
	src := `// header comment
# another

beginAppConfig("Game")
addDefine(
	"LEVEL", // trailing comment
	3
)
addSrcFile("a(b.cpp")
endAppConfig()
`
	stmts, err := splitStatements(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	lines := make([]int, len(stmts))
	for i, st := range stmts {
		lines[i] = st.line
	}
	if !slices.Equal(lines, []int{4, 5, 9, 10}) {
		t.Errorf("statement lines = %v", lines)
	}
	if !strings.Contains(stmts[1].text, "3\n)") {
		t.Errorf("multi-line statement not joined: %q", stmts[1].text)
	}
}

type workspace struct {
	root string
	g    *generator.Generator
	in   *Interp
}

func newWorkspace(t *testing.T, platform string, files map[string]string) *workspace {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	settings := config.Defaults()
	settings.Flags.ToolBuild = true
	g := generator.New(generator.Options{
		Root:     root,
		Platform: platform,
		Targets:  target.Default(),
		Settings: settings,
	})
	return &workspace{root: root, g: g, in: New(g)}
}

func (w *workspace) run(t *testing.T) error {
	t.Helper()
	return w.in.RunFile(filepath.Join(w.root, "buildFiles", "config", "project.conf"))
}

func TestRunDescription(t *testing.T) {
	w := newWorkspace(t, "linux", map[string]string{
		"buildFiles/config/project.conf": `
includeLib("Engine")

beginAppConfig("Game")
	addSrcDir("game", true)
	addIncludePath("game")
	addDependency("Engine")
	platform == "linux" ? addDefine("LINUX") : nil
	tool_build ? addDefine("TOOLS", 1) : nil
	isDefined("LINUX") ? addDefine("HAS_LINUX") : nil
	includeLib("Audio")
	includeModule("net")
endAppConfig()

beginSolution("All")
	addProjectRef("Engine")
	addProjectRef("Audio")
	addProjectRef("Game")
	setStartupProject("Game")
endSolution()
`,
		"buildFiles/config/libs/Engine.conf": `
beginLibConfig("Engine")
	addIncludePath("engine/include")
endLibConfig()
`,
		"buildFiles/config/libs/Audio.conf": `
beginLibConfig("Audio")
	addIncludePath("audio/include")
	includeLib("Engine")
endLibConfig()
`,
		"buildFiles/config/modules/net.conf": `addDefine("NET")`,
		"game/main.cpp":                      "",
		"game/ui/menu.cpp":                   "",
		"game/win32/window.cpp":              "",
	})

	if err := w.run(t); err != nil {
		t.Fatalf("run: %v", err)
	}

	game, ok := w.g.Projects().Get("Game")
	if !ok {
		t.Fatal("Game not configured")
	}
	if want := []string{"LINUX", "TOOLS=1", "HAS_LINUX", "NET"}; !slices.Equal(game.Defines, want) {
		t.Errorf("defines = %v, want %v", game.Defines, want)
	}
	if want := []string{"game", "engine/include", "audio/include"}; !slices.Equal(game.Includes, want) {
		t.Errorf("includes = %v, want %v", game.Includes, want)
	}

	if err := w.g.Generate(generator.GenerateOptions{Jobs: 2, Emitter: &render.Emitter{}}); err != nil {
		t.Fatalf("generate: %v", err)
	}

	mk, err := os.ReadFile(filepath.Join(w.root, "buildFiles", "Make", "Game.mk"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(mk), "../../game/ui/menu.cpp") {
		t.Errorf("recursive source missing:\n%s", mk)
	}
	if strings.Contains(string(mk), "window.cpp") {
		t.Errorf("rejected source listed:\n%s", mk)
	}

	sln, err := os.ReadFile(filepath.Join(w.root, "buildFiles", "Make", "All.mk"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(strings.SplitN(string(sln), "\n", 4)[2], "all: Game Engine Audio") {
		t.Errorf("startup project not first:\n%s", sln)
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		conf string
		want error
		line string
	}{
		{
			name: "nested project",
			conf: "beginAppConfig(\"A\")\nbeginLibConfig(\"B\")\n",
			want: generator.ErrProjectOpen,
			line: "project.conf:2:",
		},
		{
			name: "kind mismatch",
			conf: "beginLibConfig(\"A\")\nendAppConfig()\n",
			want: generator.ErrKindMismatch,
			line: "project.conf:2:",
		},
		{
			name: "define outside project",
			conf: "// nothing open\naddDefine(\"X\")\n",
			want: generator.ErrNoProject,
			line: "project.conf:2:",
		},
		{
			name: "bad argument type",
			conf: "beginAppConfig(42)\n",
			want: ErrBadArgs,
			line: "project.conf:1:",
		},
		{
			name: "unknown kind",
			conf: "beginProjectConfig(\"A\", \"Exe\")\n",
			want: project.ErrUnknownKind,
			line: "project.conf:1:",
		},
		{
			name: "error inside a library",
			conf: "includeLib(\"Broken\")\n",
			want: generator.ErrNoProject,
			line: "Broken.conf:1:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorkspace(t, "linux", map[string]string{
				"buildFiles/config/project.conf":     tt.conf,
				"buildFiles/config/libs/Broken.conf": "addLibDir(\"lib\")\n",
			})
			err := w.run(t)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !strings.Contains(err.Error(), tt.line) {
				t.Errorf("error %q does not name %s", err, tt.line)
			}
		})
	}
}

func TestProjectConfigAndPlugins(t *testing.T) {
	w := newWorkspace(t, "win32", map[string]string{
		"buildFiles/config/project.conf": `
beginProjectConfig("Tool", "managed", "0F1E2D3C-4B5A-6978-8796-A5B4C3D2E1F0")
	addReference("System.Xml", "4.0.0.0")
endProjectConfig("ManagedProject")

beginNPPluginConfig("RocketNP")
	setOutputName("npRocket")
endNPPluginConfig()

beginActiveXConfig("RocketAX")
	setModuleDefinitionFile("web/RocketAX.def")
endActiveXConfig()

includeProjectCode()
`,
	})

	if err := w.run(t); err != nil {
		t.Fatalf("run: %v", err)
	}
	tool, _ := w.g.Projects().Get("Tool")
	if tool.GUID != "{0F1E2D3C-4B5A-6978-8796-A5B4C3D2E1F0}" || tool.Kind != project.ManagedProject {
		t.Errorf("Tool = %+v", tool)
	}
	np, _ := w.g.Projects().Get("RocketNP")
	if np.Kind != project.SharedLib || !slices.Equal(np.Scaffolds, []string{"npapi"}) {
		t.Errorf("RocketNP = %+v", np)
	}

	if err := w.g.Generate(generator.GenerateOptions{Emitter: &render.Emitter{}}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, rel := range []string{
		"buildFiles/VisualStudio 2010/Tool.csproj",
		"buildFiles/VisualStudio 2010/RocketNP.vcxproj",
		"buildFiles/VisualStudio 2010/RocketAX.vcxproj",
		"web/activex/WebGamePlugin.idl",
		"web/npapi/install.rdf",
		"web/sample.html",
	} {
		if _, err := os.Stat(filepath.Join(w.root, filepath.FromSlash(rel))); err != nil {
			t.Errorf("%s not written: %v", rel, err)
		}
	}
}
