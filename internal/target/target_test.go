package target

import (
	"errors"
	"strings"
	"testing"
)

func newTestTarget(t *testing.T) *BuildTarget {
	t.Helper()
	bt := New("VS", "out", "out/proj", "../", map[string]string{KeyApp: "app.tmpl"}, "sln.tmpl", ".vcxproj")
	if err := bt.SetFileExtensions(".cpp", "H", "c"); err != nil {
		t.Fatal(err)
	}
	if err := bt.SetSourceFileExtensions("cpp", "c"); err != nil {
		t.Fatal(err)
	}
	if err := bt.SetRejectPatterns("**/.svn/**", "**/mac/**"); err != nil {
		t.Fatal(err)
	}
	if err := bt.SetDontCompilePatterns("**/*.inl.cpp"); err != nil {
		t.Fatal(err)
	}
	if err := bt.SetPlatforms("win32", "360"); err != nil {
		t.Fatal(err)
	}
	return bt
}

func TestPredicates(t *testing.T) {
	bt := newTestTarget(t)

	if !bt.SupportsPlatform("win32") || bt.SupportsPlatform("linux") {
		t.Error("SupportsPlatform mismatch")
	}

	tests := []struct {
		path                    string
		reject, allowed, source bool
	}{
		{"src/main.cpp", false, true, true},
		{"src/main.h", false, true, false},
		{"src/MAIN.CPP", false, true, true},
		{"src/readme.txt", false, false, false},
		{"src/.svn/entries.cpp", true, true, true},
		{"platform/mac/window.cpp", true, true, true},
	}
	for _, tt := range tests {
		if got := bt.RuleReject(tt.path); got != tt.reject {
			t.Errorf("RuleReject(%q) = %v", tt.path, got)
		}
		if got := bt.AllowedFileExt(tt.path); got != tt.allowed {
			t.Errorf("AllowedFileExt(%q) = %v", tt.path, got)
		}
		if got := bt.IsSourceFile(tt.path); got != tt.source {
			t.Errorf("IsSourceFile(%q) = %v", tt.path, got)
		}
	}

	if !bt.DontCompile("math/mPoint.inl.cpp") {
		t.Error("DontCompile should match")
	}
}

func TestNoExtensionsAllowsAll(t *testing.T) {
	bt := New("any", "", "", "", nil, "", ".mk")
	if !bt.AllowedFileExt("whatever.xyz") {
		t.Error("a target without extensions should accept every file")
	}
}

func TestBadPattern(t *testing.T) {
	bt := New("bad", "", "", "", nil, "", "")
	if err := bt.SetRejectPatterns("[unclosed"); !errors.Is(err, ErrBadPattern) {
		t.Errorf("expected ErrBadPattern, got %v", err)
	}
}

func TestRegistryFreezes(t *testing.T) {
	reg := NewRegistry()
	bt := newTestTarget(t)
	if err := reg.Register(bt); err != nil {
		t.Fatal(err)
	}
	if err := bt.SetPlatforms("linux"); !errors.Is(err, ErrFrozen) {
		t.Errorf("expected ErrFrozen, got %v", err)
	}
	if err := reg.Register(New("VS", "", "", "", nil, "", "")); !errors.Is(err, ErrDuplicateTarget) {
		t.Errorf("expected ErrDuplicateTarget, got %v", err)
	}
	if _, err := reg.Get("nope"); !errors.Is(err, ErrUnknownTarget) {
		t.Errorf("expected ErrUnknownTarget, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	src := `
[[target]]
name = "A"
output_dir = "out/a"
output_ext = ".vcxproj"
solution = "a.sln.tmpl"
solution_ext = ".sln"
platforms = ["win32"]
windows_paths = true

[target.templates]
app = "a.tmpl"
managed = "cs.tmpl"

[target.kind_ext]
managed = ".csproj"

[[target]]
name = "B"
platforms = ["linux", "win32"]
`
	reg, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}

	all := reg.All()
	if len(all) != 2 || all[0].Name != "A" || all[1].Name != "B" {
		t.Fatalf("unexpected registration order: %v", all)
	}
	a := all[0]
	if a.Template(KeyApp) != "a.tmpl" || a.Template(KeyLib) != "" {
		t.Error("templates not loaded")
	}
	if a.ExtFor(KeyManaged) != ".csproj" || a.ExtFor(KeyApp) != ".vcxproj" {
		t.Error("kind extensions not loaded")
	}
	if !a.WindowsPaths {
		t.Error("windows_paths not loaded")
	}

	if got := reg.Supporting("win32"); len(got) != 2 {
		t.Errorf("Supporting(win32) = %d targets", len(got))
	}
	if got := reg.Supporting("linux"); len(got) != 1 || got[0].Name != "B" {
		t.Errorf("Supporting(linux) = %v", got)
	}
}

func TestLoadUnknownField(t *testing.T) {
	if _, err := Load(strings.NewReader("[[target]]\nname = \"x\"\nbogus = 1\n")); err == nil {
		t.Error("expected an error for an unknown field")
	}
}

func TestDefault(t *testing.T) {
	reg := Default()
	if len(reg.Supporting("win32")) == 0 || len(reg.Supporting("linux")) == 0 {
		t.Error("default targets should cover win32 and linux")
	}
}
