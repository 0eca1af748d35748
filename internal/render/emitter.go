package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/qobs-build/projgen/internal/msg"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Emitter writes generated files. With Diff set, it prints what changes against the file on
// disk; with DryRun set nothing is written.
type Emitter struct {
	DryRun  bool
	Diff    io.Writer
	OnWrite func(path string)

	written []string
}

func (e *Emitter) Write(path string, data []byte) error {
	if e.Diff != nil {
		if err := e.diff(path, data); err != nil {
			return err
		}
	}

	if !e.DryRun {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}

	e.written = append(e.written, path)
	if e.OnWrite != nil {
		e.OnWrite(path)
	}
	return nil
}

// Copy copies src to dst through Write.
func (e *Emitter) Copy(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return e.Write(dst, data)
}

// Written lists the paths passed to Write, in order.
func (e *Emitter) Written() []string {
	return append([]string(nil), e.written...)
}

func (e *Emitter) diff(path string, data []byte) error {
	old, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err == nil && bytes.Equal(old, data) {
		return nil
	}

	fmt.Fprintf(e.Diff, "%s %s\n", color.HiCyanString("---"), filepath.ToSlash(path))
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(old), string(data))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	w := &msg.IndentWriter{Indent: "  ", W: e.Diff}
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			fmt.Fprint(w, color.GreenString(prefixLines("+", d.Text)))
		case diffmatchpatch.DiffDelete:
			fmt.Fprint(w, color.RedString(prefixLines("-", d.Text)))
		}
	}
	return nil
}

func prefixLines(prefix, text string) string {
	var buf bytes.Buffer
	for _, line := range bytes.SplitAfter([]byte(text), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		buf.WriteString(prefix)
		buf.Write(line)
	}
	if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}
	return buf.String()
}
