package target

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Registry keeps build targets by name, in registration order.
type Registry struct {
	byName map[string]*BuildTarget
	order  []*BuildTarget
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*BuildTarget)}
}

// Register stores t and freezes it.
func (r *Registry) Register(t *BuildTarget) error {
	if _, ok := r.byName[t.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTarget, t.Name)
	}
	t.frozen = true
	r.byName[t.Name] = t
	r.order = append(r.order, t)
	return nil
}

func (r *Registry) Get(name string) (*BuildTarget, error) {
	if t, ok := r.byName[name]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
}

func (r *Registry) All() []*BuildTarget {
	return append([]*BuildTarget(nil), r.order...)
}

// Supporting returns the targets that support platform, in registration order.
func (r *Registry) Supporting(platform string) []*BuildTarget {
	var out []*BuildTarget
	for _, t := range r.order {
		if t.SupportsPlatform(platform) {
			out = append(out, t)
		}
	}
	return out
}

// fileSection defines a [[target]] table
type fileSection struct {
	Name        string            `toml:"name"`
	OutputDir   string            `toml:"output_dir"`
	ProjectDir  string            `toml:"project_dir"`
	BaseDir     string            `toml:"base_dir"`
	OutputExt   string            `toml:"output_ext"`
	SolutionExt string            `toml:"solution_ext"`
	Solution    string            `toml:"solution"`
	Templates   map[string]string `toml:"templates"`
	KindExt     map[string]string `toml:"kind_ext"`
	Platforms   []string          `toml:"platforms"`
	FileExts    []string          `toml:"file_exts"`
	SourceExts  []string          `toml:"source_exts"`
	Reject      []string          `toml:"reject"`
	DontCompile []string          `toml:"dont_compile"`
	WinPaths    bool              `toml:"windows_paths"`
	Filters     bool              `toml:"filters"`
}

type targetsFile struct {
	Target []fileSection `toml:"target"`
}

// Load reads [[target]] tables and registers them in order.
func Load(rdr io.Reader) (*Registry, error) {
	var file targetsFile
	dec := toml.NewDecoder(rdr)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return nil, errors.New(derr.String())
		}
		return nil, err
	}

	reg := NewRegistry()
	for _, sec := range file.Target {
		if sec.Name == "" {
			return nil, errors.New("target without a name")
		}
		t := New(sec.Name, sec.OutputDir, sec.ProjectDir, sec.BaseDir, sec.Templates, sec.Solution, sec.OutputExt)
		t.SolutionExt = sec.SolutionExt
		t.WindowsPaths = sec.WinPaths
		t.Filters = sec.Filters
		for k, v := range sec.KindExt {
			t.SetKindExt(k, v)
		}
		t.SetFileExtensions(sec.FileExts...)
		t.SetSourceFileExtensions(sec.SourceExts...)
		t.SetPlatforms(sec.Platforms...)
		if err := t.SetRejectPatterns(sec.Reject...); err != nil {
			return nil, fmt.Errorf("target %q: %w", sec.Name, err)
		}
		if err := t.SetDontCompilePatterns(sec.DontCompile...); err != nil {
			return nil, fmt.Errorf("target %q: %w", sec.Name, err)
		}
		if err := reg.Register(t); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// LoadFile loads a targets file from a filepath
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reg, err := Load(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

//go:embed targets.toml
var defaultTargets []byte

// Default returns the built-in targets.
func Default() *Registry {
	reg, err := Load(bytes.NewReader(defaultTargets))
	if err != nil {
		panic(fmt.Sprintf("built-in targets: %v", err))
	}
	return reg
}
