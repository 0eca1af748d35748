package config

import (
	"bufio"
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/pelletier/go-toml/v2"

	"github.com/qobs-build/projgen/internal/msg"
)

// Settings holds run-wide values. Templates and scripts can read them; they never change how
// the generator itself behaves.
type Settings struct {
	Platform       string            `toml:"platform"`
	StartupProject string            `toml:"startup_project"`
	Flags          Flags             `toml:"flags"`
	Deployment     Deployment        `toml:"deployment"`
	Browsers       map[string]string `toml:"browsers"`
}

// Flags defines the [flags] section
type Flags struct {
	ToolBuild   bool `toml:"tool_build"`
	DemoBuild   bool `toml:"demo_build"`
	Watermark   bool `toml:"watermark"`
	ObjectLimit int  `toml:"object_limit"`
	TimeOut     int  `toml:"time_out"`
	DLLRuntime  bool `toml:"dll_runtime"`
}

// Vars exposes the flags to scripts and templates.
func (f Flags) Vars() map[string]any {
	return map[string]any{
		"tool_build":   f.ToolBuild,
		"demo_build":   f.DemoBuild,
		"watermark":    f.Watermark,
		"object_limit": f.ObjectLimit,
		"time_out":     f.TimeOut,
		"dll_runtime":  f.DLLRuntime,
	}
}

// mergeStructs merges the fields of the src struct into the dst struct
func mergeStructs(dst, src any) error {
	dstVal := reflect.ValueOf(dst)
	if dstVal.Kind() != reflect.Pointer || dstVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dst must be a pointer to a struct")
	}

	dstElem := dstVal.Elem()
	srcVal := reflect.ValueOf(src)

	if srcVal.Kind() == reflect.Pointer {
		srcVal = srcVal.Elem()
	}

	if srcVal.Kind() != reflect.Struct {
		return fmt.Errorf("src must be a struct or a pointer to a struct")
	}

	if dstElem.Type() != srcVal.Type() {
		return fmt.Errorf("dst and src must be of the same struct type")
	}

	for i := range srcVal.NumField() {
		srcField := srcVal.Field(i)
		dstField := dstElem.Field(i)

		if !dstField.CanSet() {
			continue
		}

		switch dstField.Kind() {
		case reflect.Slice:
			if !srcField.IsNil() {
				dstField.Set(reflect.AppendSlice(dstField, srcField))
			}
		case reflect.Map:
			if !srcField.IsNil() {
				if dstField.IsNil() {
					dstField.Set(reflect.MakeMap(dstField.Type()))
				}
				for _, key := range srcField.MapKeys() {
					dstField.SetMapIndex(key, srcField.MapIndex(key))
				}
			}
		case reflect.Bool:
			dstField.SetBool(dstField.Bool() || srcField.Bool())
		default:
			if !srcField.IsZero() {
				dstField.Set(srcField)
			}
		}
	}

	return nil
}

func mustMarshal(v any) string {
	b, err := toml.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// unmarshalSection is a helper to parse sections without conditional logic
func unmarshalSection(rawCfg map[string]any, name string, dst any) error {
	if data, ok := rawCfg[name]; ok {
		if err := toml.Unmarshal([]byte(mustMarshal(data)), dst); err != nil {
			return fmt.Errorf("failed to parse [%s] section: %w", name, err)
		}
	}
	return nil
}

// condition is a sub-table of a section that only applies when its expression holds.
type condition struct {
	when    string
	program *vm.Program
	fields  map[string]any
}

// splitSection separates the plain keys of a section from its conditional sub-tables. A
// sub-table counts as conditional when its key compiles as a boolean expression. Conditions
// are returned in document order, with any the document order does not know sorted last.
func splitSection(section map[string]any, name string, order keyOrder, env Env) (map[string]any, []condition) {
	base := make(map[string]any)
	var conds []condition
	for key, val := range section {
		sub, ok := val.(map[string]any)
		if !ok {
			base[key] = val
			continue
		}
		program, err := expr.Compile(key, expr.Env(env), expr.AsBool())
		if err != nil {
			base[key] = val
			continue
		}
		conds = append(conds, condition{when: key, program: program, fields: sub})
	}

	slices.SortFunc(conds, func(a, b condition) int {
		ia, ib := order.index(name, a.when), order.index(name, b.when)
		switch {
		case ia >= 0 && ib >= 0:
			return cmp.Compare(ia, ib)
		case ia >= 0:
			return -1
		case ib >= 0:
			return 1
		}
		return strings.Compare(a.when, b.when)
	})
	return base, conds
}

// decodeSection decodes [name] into dst, then layers every true condition over it in order.
// A later condition overrides the scalars of an earlier one.
func decodeSection[T any](rawCfg map[string]any, name string, dst *T, order keyOrder, env Env) error {
	data, ok := rawCfg[name]
	if !ok {
		return nil
	}
	section, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("invalid [%s] section format: expected a table", name)
	}

	base, conds := splitSection(section, name, order, env)
	if len(base) > 0 {
		if err := toml.Unmarshal([]byte(mustMarshal(base)), dst); err != nil {
			return fmt.Errorf("failed to parse base [%s] section: %w", name, err)
		}
	}

	for _, c := range conds {
		result, err := expr.Run(c.program, env)
		if err != nil {
			return fmt.Errorf("failed to run expression for [%s.%q]: %w", name, c.when, err)
		}
		if matched, _ := result.(bool); !matched {
			msg.Debug("settings: [%s.%q] does not apply", name, c.when)
			continue
		}

		var layer T
		if err := toml.Unmarshal([]byte(mustMarshal(c.fields)), &layer); err != nil {
			return fmt.Errorf("failed to parse conditional section [%s.%q]: %w", name, c.when, err)
		}
		if err := mergeStructs(dst, layer); err != nil {
			return fmt.Errorf("failed to merge conditional section [%s.%q]: %w", name, c.when, err)
		}
	}

	return nil
}

var exprRegex = regexp.MustCompile(`\{\{(.+?)\}\}`)

// evaluateString replaces every {{ expr }} in s with the printed result of expr.
func evaluateString(s string, env Env) (string, error) {
	var firstErr error
	out := exprRegex.ReplaceAllStringFunc(s, func(m string) string {
		if firstErr != nil {
			return m
		}
		expression := strings.TrimSpace(exprRegex.FindStringSubmatch(m)[1])
		program, err := expr.Compile(expression, expr.Env(env))
		if err != nil {
			firstErr = fmt.Errorf("compile %q: %w", expression, err)
			return m
		}
		result, err := expr.Run(program, env)
		if err != nil {
			firstErr = fmt.Errorf("evaluate %q: %w", expression, err)
			return m
		}
		return fmt.Sprint(result)
	})
	return out, firstErr
}

// processExpressions recursively walks the parsed TOML data and evaluates expressions in strings
func processExpressions(data any, env Env) (any, error) {
	switch v := data.(type) {
	case map[string]any:
		for key, val := range v {
			processedVal, err := processExpressions(val, env)
			if err != nil {
				return nil, err
			}
			v[key] = processedVal
		}
		return v, nil
	case []any:
		for i, item := range v {
			processedItem, err := processExpressions(item, env)
			if err != nil {
				return nil, err
			}
			v[i] = processedItem
		}
		return v, nil
	case string:
		return evaluateString(v, env)
	default:
		return data, nil
	}
}

// Parse reads settings. Values not present keep their defaults.
func Parse(rdr io.Reader, env Env) (*Settings, error) {
	data, err := io.ReadAll(rdr)
	if err != nil {
		return nil, err
	}

	var rawConfig map[string]any
	if err := toml.Unmarshal(data, &rawConfig); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			return nil, errors.New(derr.String())
		}
		return nil, err
	}
	order, err := scanKeyOrder(data)
	if err != nil {
		return nil, err
	}

	processedConfig, err := processExpressions(rawConfig, env)
	if err != nil {
		return nil, fmt.Errorf("error processing expressions in settings: %w", err)
	}
	rawConfig = processedConfig.(map[string]any)

	s := Defaults()
	if v, ok := rawConfig["platform"].(string); ok {
		s.Platform = v
	}
	if v, ok := rawConfig["startup_project"].(string); ok {
		s.StartupProject = v
	}
	if err := decodeSection(rawConfig, "flags", &s.Flags, order, env); err != nil {
		return nil, err
	}
	if err := decodeSection(rawConfig, "deployment", &s.Deployment, order, env); err != nil {
		return nil, err
	}
	if err := unmarshalSection(rawConfig, "browsers", &s.Browsers); err != nil {
		return nil, err
	}

	return s, nil
}

// ParseFile parses a settings file from a filepath. A missing file yields the defaults.
func ParseFile(path string, env Env) (*Settings, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults(), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := Parse(bufio.NewReader(f), env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Defaults() *Settings {
	return &Settings{
		Platform:   DefaultPlatform(),
		Deployment: DefaultDeployment(),
	}
}

// DefaultPlatform maps the host OS to a platform tag.
func DefaultPlatform() string {
	switch runtime.GOOS {
	case "windows":
		return "win32"
	case "darwin":
		return "mac"
	default:
		return "linux"
	}
}

// Env is the expression environment of settings files.
type Env struct {
	Platform   string            `expr:"platform"`
	TargetOS   string            `expr:"target_os"`
	TargetArch string            `expr:"target_arch"`
	Environ    map[string]string `expr:"environ"`
}

func NewEnv(platform string) Env {
	environ := make(map[string]string)
	for _, e := range os.Environ() {
		if i := strings.Index(e, "="); i >= 0 {
			environ[e[:i]] = e[i+1:]
		}
	}

	return Env{
		Platform:   platform,
		TargetOS:   runtime.GOOS,
		TargetArch: runtime.GOARCH,
		Environ:    environ,
	}
}
