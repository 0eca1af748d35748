package render

import (
	"bytes"
	"embed"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
)

var ErrTemplateNotFound = errors.New("template not found")

//go:embed templates
var builtin embed.FS

// Engine loads templates by name, looking in the override directories first and in the
// built-in set last.
type Engine struct {
	dirs  []string
	fsys  fs.FS
	cache map[string]*template.Template
}

func NewEngine(overrideDirs ...string) *Engine {
	sub, err := fs.Sub(builtin, "templates")
	if err != nil {
		panic(err)
	}
	return &Engine{
		dirs:  overrideDirs,
		fsys:  sub,
		cache: make(map[string]*template.Template),
	}
}

// ReadRaw returns the template text without parsing it.
func (e *Engine) ReadRaw(name string) (string, error) {
	for _, dir := range e.dirs {
		data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}

	data, err := fs.ReadFile(e.fsys, path.Clean(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return "", err
	}
	return string(data), nil
}

// Lookup parses (and caches) a template.
func (e *Engine) Lookup(name string) (*template.Template, error) {
	if t, ok := e.cache[name]; ok {
		return t, nil
	}
	text, err := e.ReadRaw(name)
	if err != nil {
		return nil, err
	}
	t, err := template.New(name).Funcs(funcs).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	e.cache[name] = t
	return t, nil
}

// Render executes a template with data.
func (e *Engine) Render(name string, data any) ([]byte, error) {
	t, err := e.Lookup(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

var funcs = template.FuncMap{
	"join":  strings.Join,
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"xml":   xmlEscape,
	"winpath": func(p string) string {
		return strings.ReplaceAll(p, "/", `\`)
	},
	"trimext": func(p string) string {
		return strings.TrimSuffix(p, path.Ext(p))
	},
	"ident": func(s string) string {
		return strings.Map(func(r rune) rune {
			if r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
				return r
			}
			return '_'
		}, s)
	},
}

func xmlEscape(s string) string {
	var sb strings.Builder
	xml.EscapeText(&sb, []byte(s))
	return sb.String()
}
