package plugin

import (
	"path/filepath"
	"strings"
)

const fragmentsToken = "__EMBED_FRAGMENTS__"

// SamplePage collects one embed fragment per variant for the run-wide sample page.
type SamplePage struct {
	order     []Variant
	fragments map[Variant]string
	written   bool
}

func NewSamplePage() *SamplePage {
	return &SamplePage{fragments: make(map[Variant]string)}
}

// Add stores the fragment for v unless one is already present. It reports whether it was stored.
func (sp *SamplePage) Add(v Variant, fragment string) bool {
	if _, ok := sp.fragments[v]; ok {
		return false
	}
	sp.fragments[v] = fragment
	sp.order = append(sp.order, v)
	return true
}

func (sp *SamplePage) Len() int { return len(sp.order) }

// Write renders the page to Deployment.SamplePage. It does nothing without fragments or when
// the page was already written.
func (sp *SamplePage) Write(s *Scaffold) error {
	if sp.written || len(sp.order) == 0 {
		return nil
	}

	text, err := s.Engine.ReadRaw("web/sample.html")
	if err != nil {
		return err
	}

	parts := make([]string, len(sp.order))
	for i, v := range sp.order {
		parts[i] = strings.TrimRight(sp.fragments[v], "\n")
	}
	text = strings.ReplaceAll(text, fragmentsToken, strings.Join(parts, "\n"))
	text = substitute(text, s.replacements(nil))

	dst := s.Deployment.SamplePage
	if dst == "" {
		dst = "web/sample.html"
	}
	if err := s.Emitter.Write(filepath.Join(s.Root, filepath.FromSlash(dst)), []byte(text)); err != nil {
		return err
	}
	sp.written = true
	return nil
}
