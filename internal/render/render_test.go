package render

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestEngineBuiltin(t *testing.T) {
	e := NewEngine()
	text, err := e.ReadRaw("web/sample.html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "__EMBED_FRAGMENTS__") {
		t.Errorf("unexpected sample page:\n%s", text)
	}

	if _, err := e.Render("vs2010/nope.tmpl", nil); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestEngineOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "make"), 0o755); err != nil {
		t.Fatal(err)
	}
	tmpl := `{{ upper .Name }} {{ winpath .Path }} {{ xml .Text }} {{ ident .Name }} {{ trimext "z.lib" }} {{ join .List "," }} [{{ .Missing.Key }}]`
	if err := os.WriteFile(filepath.Join(dir, "make", "project.mk.tmpl"), []byte(tmpl), 0o644); err != nil {
		t.Fatal(err)
	}

	e := NewEngine(filepath.Join(t.TempDir(), "absent"), dir)
	out, err := e.Render("make/project.mk.tmpl", map[string]any{
		"Name":    "my-game",
		"Path":    "a/b.cpp",
		"Text":    "a<b",
		"List":    []string{"x", "y"},
		"Missing": map[string]string{},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `MY-GAME a\b.cpp a&lt;b my_game z x,y []`
	if string(out) != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestEmitterDryRun(t *testing.T) {
	dir := t.TempDir()
	var seen []string
	e := &Emitter{DryRun: true, OnWrite: func(p string) { seen = append(seen, p) }}

	path := filepath.Join(dir, "out", "a.txt")
	if err := e.Write(path, []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("dry run wrote %s", path)
	}
	if len(e.Written()) != 1 || len(seen) != 1 {
		t.Errorf("write not recorded: %v %v", e.Written(), seen)
	}
}

func TestEmitterDiff(t *testing.T) {
	color.NoColor = true
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	e := &Emitter{Diff: &buf}
	if err := e.Write(path, []byte("one\n2\nthree\n")); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"  -two\n", "  +2\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("diff lacks %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := e.Write(path, []byte("one\n2\nthree\n")); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("unchanged file produced a diff:\n%s", buf.String())
	}
}

func TestEmitterCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := &Emitter{}
	dst := filepath.Join(dir, "sub", "dst.txt")
	if err := e.Copy(src, dst); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "data" {
		t.Errorf("copy = %q, %v", data, err)
	}
	if err := e.Copy(filepath.Join(dir, "missing"), dst); !os.IsNotExist(err) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}
