package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/expr-lang/expr"
	"github.com/qobs-build/projgen/internal/config"
	"github.com/qobs-build/projgen/internal/generator"
	"github.com/qobs-build/projgen/internal/msg"
)

var ErrBadArgs = errors.New("bad arguments")

// Interp runs build descriptions: every statement is an expr expression evaluated against the
// generator's configuration functions.
type Interp struct {
	g    *generator.Generator
	env  map[string]any
	opts []expr.Option

	// err is the error returned by the last failing function, kept so its type survives expr
	err error
}

// New creates an interpreter for g and registers itself as g's fragment loader.
func New(g *generator.Generator) *Interp {
	env := config.NewEnv(g.Platform())
	in := &Interp{
		g: g,
		env: map[string]any{
			"platform":    env.Platform,
			"target_os":   env.TargetOS,
			"target_arch": env.TargetArch,
			"environ":     env.Environ,
		},
	}
	for k, v := range g.Settings().Flags.Vars() {
		in.env[k] = v
	}

	in.opts = append(in.opts, expr.Env(in.env))
	for name, fn := range in.functions() {
		in.opts = append(in.opts, expr.Function(name, in.record(fn)))
	}

	g.SetLoader(in)
	return in
}

// record keeps the typed error of a failing call.
func (in *Interp) record(fn func(params ...any) (any, error)) func(params ...any) (any, error) {
	return func(params ...any) (any, error) {
		out, err := fn(params...)
		if err != nil && in.err == nil {
			in.err = err
		}
		return out, err
	}
}

// RunFile runs the description at path.
func (in *Interp) RunFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return in.Run(path, bufio.NewReader(f))
}

// Run runs a description read from r; name is used in error messages.
func (in *Interp) Run(name string, r io.Reader) error {
	stmts, err := splitStatements(r)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	msg.Debug("running %s (%d statements)", name, len(stmts))
	for _, st := range stmts {
		if err := in.exec(st); err != nil {
			return fmt.Errorf("%s:%d: %w", name, st.line, err)
		}
	}
	return nil
}

func (in *Interp) exec(st statement) error {
	program, err := expr.Compile(st.text, in.opts...)
	if err != nil {
		return err
	}

	outer := in.err
	in.err = nil
	_, err = expr.Run(program, in.env)
	failed := in.err
	in.err = outer

	if failed != nil {
		return failed
	}
	return err
}
