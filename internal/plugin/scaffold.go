package plugin

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/qobs-build/projgen/internal/config"
	"github.com/qobs-build/projgen/internal/project"
	"github.com/qobs-build/projgen/internal/render"
)

var ErrUnknownVariant = errors.New("unknown plugin variant")

// Variant is a browser plugin packaging flavor.
type Variant string

const (
	ActiveX Variant = "activex"
	NPAPI   Variant = "npapi"
	Safari  Variant = "safari"
)

func ParseVariant(s string) (Variant, error) {
	switch v := Variant(strings.ToLower(s)); v {
	case ActiveX, NPAPI, Safari:
		return v, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// ForKind returns the variant a project kind implies, if any.
func ForKind(k project.Kind) (Variant, bool) {
	switch k {
	case project.ActiveXPlugin:
		return ActiveX, true
	case project.SafariPlugin:
		return Safari, true
	}
	return "", false
}

// templates lists the template files of a variant. Names starting with "plugin." are renamed
// after the plugin.
var templates = map[Variant][]string{
	ActiveX: {"plugin.idl", "plugin.rgs", "plugin.rc"},
	NPAPI:   {"plugin.rc", "install.rdf"},
	Safari:  {"Info.plist"},
}

func artifactName(file, pluginName string) string {
	if rest, ok := strings.CutPrefix(file, "plugin."); ok {
		return pluginName + "." + rest
	}
	return file
}

func pluginName(d config.Deployment) string {
	if d.PluginName == "" {
		return config.DefaultDeployment().PluginName
	}
	return d.PluginName
}

// Dir is where the artifacts of v go for p, root relative.
func Dir(v Variant, p *project.Project) string {
	return path.Join(p.OutputDir, "web", string(v))
}

// Artifacts lists the root relative paths Generate writes for v and p.
func Artifacts(v Variant, p *project.Project, d config.Deployment) []string {
	var out []string
	for _, file := range templates[v] {
		out = append(out, path.Join(Dir(v, p), artifactName(file, pluginName(d))))
	}
	return out
}

// Scaffold writes browser plugin packaging files from raw templates with literal token
// substitution.
type Scaffold struct {
	Root       string
	Engine     *render.Engine
	Emitter    *render.Emitter
	Deployment config.Deployment
}

func bareGUID(kind, name string) string {
	return strings.Trim(project.NameGUID(kind, name), "{}")
}

// replacements returns the token substitutions in the order they are applied.
func (s *Scaffold) replacements(p *project.Project) [][2]string {
	d := s.Deployment
	name := pluginName(d)

	clsid := d.ActiveXCLSID
	if clsid == "" {
		clsid = bareGUID("clsid", name)
	}
	libid := d.ActiveXLibID
	if libid == "" {
		libid = bareGUID("libid", name)
	}
	bundle := d.SafariBundle
	if bundle == "" {
		bundle = "com." + d.CompanyKey + "." + name
	}
	npid := d.NPPluginID
	if npid == "" {
		npid = name + "@" + d.CompanyKey
	}
	projectName := ""
	if p != nil {
		projectName = p.Name
	}

	return [][2]string{
		{"__PLUGIN_NAME__", name},
		{"__PRODUCT_NAME__", d.ProductName},
		{"__COMPANY__", d.Company},
		{"__COMPANY_KEY__", d.CompanyKey},
		{"__DESCRIPTION__", d.Description},
		{"__MIME_TYPE__", d.MimeType},
		{"__VERSION__", d.VersionDotted()},
		{"__VERSION_COMMA__", d.VersionComma()},
		{"__CLSID__", strings.Trim(clsid, "{}")},
		{"__LIBID__", strings.Trim(libid, "{}")},
		{"__BUNDLE_ID__", bundle},
		{"__NP_ID__", npid},
		{"__PROJECT__", projectName},
	}
}

func substitute(text string, repl [][2]string) string {
	for _, r := range repl {
		text = strings.ReplaceAll(text, r[0], r[1])
	}
	return text
}

// Generate writes the artifacts of v for p and contributes the variant's embed fragment to page.
func (s *Scaffold) Generate(v Variant, p *project.Project, page *SamplePage) error {
	files, ok := templates[v]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
	repl := s.replacements(p)

	for _, file := range files {
		text, err := s.Engine.ReadRaw(path.Join("web", string(v), file))
		if err != nil {
			return fmt.Errorf("%s scaffold for %q: %w", v, p.Name, err)
		}
		out := filepath.Join(s.Root, filepath.FromSlash(Dir(v, p)), artifactName(file, pluginName(s.Deployment)))
		if err := s.Emitter.Write(out, []byte(substitute(text, repl))); err != nil {
			return err
		}
	}

	if page != nil {
		fragment, err := s.Engine.ReadRaw(path.Join("web", string(v), "embed.html"))
		if err != nil {
			return fmt.Errorf("%s scaffold for %q: %w", v, p.Name, err)
		}
		page.Add(v, substitute(fragment, repl))
	}
	return nil
}
