package script

import (
	"fmt"

	"github.com/qobs-build/projgen/internal/project"
)

type function = func(params ...any) (any, error)

// args reads positional parameters of one call.
type args struct {
	fn     string
	params []any
}

func (a args) count(min, max int) error {
	if n := len(a.params); n < min || n > max {
		if min == max {
			return fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrBadArgs, a.fn, min, n)
		}
		return fmt.Errorf("%w: %s takes %d to %d arguments, got %d", ErrBadArgs, a.fn, min, max, n)
	}
	return nil
}

func (a args) str(i int) (string, error) {
	if i >= len(a.params) {
		return "", nil
	}
	s, ok := a.params[i].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s argument %d must be a string, got %T", ErrBadArgs, a.fn, i+1, a.params[i])
	}
	return s, nil
}

func (a args) boolean(i int) (bool, error) {
	if i >= len(a.params) {
		return false, nil
	}
	b, ok := a.params[i].(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s argument %d must be a bool, got %T", ErrBadArgs, a.fn, i+1, a.params[i])
	}
	return b, nil
}

func (a args) strings() ([]string, error) {
	out := make([]string, 0, len(a.params))
	for i := range a.params {
		s, err := a.str(i)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// strFunc wraps a call taking between min and max string arguments.
func strFunc(name string, min, max int, fn func(s []string) error) function {
	return func(params ...any) (any, error) {
		a := args{fn: name, params: params}
		if err := a.count(min, max); err != nil {
			return nil, err
		}
		s, err := a.strings()
		if err != nil {
			return nil, err
		}
		for len(s) < max {
			s = append(s, "")
		}
		return nil, fn(s)
	}
}

func (in *Interp) beginFunc(name string, kind project.Kind) function {
	return strFunc(name, 1, 2, func(s []string) error {
		_, err := in.g.BeginProject(s[0], kind, s[1])
		return err
	})
}

func (in *Interp) endFunc(kind project.Kind) function {
	return func(params ...any) (any, error) {
		return nil, in.g.EndProjectKind(kind)
	}
}

func (in *Interp) functions() map[string]function {
	g := in.g
	fns := map[string]function{
		"beginNPPluginConfig": strFunc("beginNPPluginConfig", 1, 2, func(s []string) error {
			_, err := g.BeginNPPlugin(s[0], s[1])
			return err
		}),
		"endNPPluginConfig": in.endFunc(project.SharedLib),

		"beginProjectConfig": strFunc("beginProjectConfig", 2, 3, func(s []string) error {
			kind, err := project.ParseKind(s[1])
			if err != nil {
				return err
			}
			_, err = g.BeginProject(s[0], kind, s[2])
			return err
		}),
		"endProjectConfig": strFunc("endProjectConfig", 1, 1, func(s []string) error {
			kind, err := project.ParseKind(s[0])
			if err != nil {
				return err
			}
			return g.EndProjectKind(kind)
		}),

		"beginSolution": strFunc("beginSolution", 1, 1, func(s []string) error {
			_, err := g.BeginSolution(s[0])
			return err
		}),
		"endSolution": func(params ...any) (any, error) {
			return nil, g.EndCurrentSolution()
		},
		"addProjectRef": strFunc("addProjectRef", 1, 1, func(s []string) error {
			return g.AddProjectRef(s[0])
		}),
		"addExternalProjectRef": strFunc("addExternalProjectRef", 2, 4, func(s []string) error {
			return g.AddExternalProjectRef(s[0], s[1], s[2], s[3])
		}),
		"solutionTarget": func(params ...any) (any, error) {
			a := args{fn: "solutionTarget", params: params}
			if err := a.count(1, len(params)+1); err != nil {
				return nil, err
			}
			names, err := a.strings()
			if err != nil {
				return nil, err
			}
			return nil, g.SolutionTarget(names...)
		},
		"setStartupProject": strFunc("setStartupProject", 1, 1, func(s []string) error {
			g.SetStartupProject(s[0])
			return nil
		}),

		"includeLib": strFunc("includeLib", 1, 1, func(s []string) error {
			return g.IncludeLib(s[0])
		}),
		"includeModule": strFunc("includeModule", 1, 1, func(s []string) error {
			return g.IncludeModule(s[0])
		}),
		"includeProjectCode": func(params ...any) (any, error) {
			return nil, g.IncludeProjectCode()
		},

		"addSrcDir": func(params ...any) (any, error) {
			a := args{fn: "addSrcDir", params: params}
			if err := a.count(1, 2); err != nil {
				return nil, err
			}
			path, err := a.str(0)
			if err != nil {
				return nil, err
			}
			recursive, err := a.boolean(1)
			if err != nil {
				return nil, err
			}
			return nil, g.AddSourceDir(path, recursive)
		},
		"addSrcFile": strFunc("addSrcFile", 1, 1, func(s []string) error {
			return g.AddSourceFile(s[0])
		}),
		"addIncludePath": strFunc("addIncludePath", 1, 1, func(s []string) error {
			return g.AddIncludePath(s[0])
		}),
		"addLibIncludePath": strFunc("addLibIncludePath", 1, 1, func(s []string) error {
			g.AddLibIncludePath(s[0])
			return nil
		}),
		"addDefine": func(params ...any) (any, error) {
			a := args{fn: "addDefine", params: params}
			if err := a.count(1, 2); err != nil {
				return nil, err
			}
			name, err := a.str(0)
			if err != nil {
				return nil, err
			}
			value := ""
			if len(params) == 2 {
				// numbers are accepted as values
				value = fmt.Sprint(params[1])
			}
			return nil, g.AddDefine(name, value)
		},
		"isDefined": func(params ...any) (any, error) {
			a := args{fn: "isDefined", params: params}
			if err := a.count(1, 1); err != nil {
				return nil, err
			}
			name, err := a.str(0)
			if err != nil {
				return nil, err
			}
			return g.IsDefined(name)
		},
		"disableWarning": func(params ...any) (any, error) {
			a := args{fn: "disableWarning", params: params}
			if err := a.count(1, 1); err != nil {
				return nil, err
			}
			return nil, g.DisableWarning(fmt.Sprint(params[0]))
		},
		"addLibDir": strFunc("addLibDir", 1, 1, func(s []string) error {
			return g.AddLibDir(s[0])
		}),
		"addLibInput": strFunc("addLibInput", 1, 2, func(s []string) error {
			return g.AddLibInput(s[0], s[1])
		}),
		"addIgnoreDefaultLib": strFunc("addIgnoreDefaultLib", 1, 1, func(s []string) error {
			return g.AddIgnoreDefaultLib(s[0])
		}),
		"addDependency": strFunc("addDependency", 1, 1, func(s []string) error {
			return g.AddDependency(s[0])
		}),
		"removeDependency": strFunc("removeDependency", 1, 1, func(s []string) error {
			return g.RemoveDependency(s[0])
		}),
		"addReference": strFunc("addReference", 1, 2, func(s []string) error {
			return g.AddReference(s[0], s[1])
		}),
		"copyFileToProject": strFunc("copyFileToProject", 2, 2, func(s []string) error {
			return g.CopyFileToProject(s[0], s[1])
		}),
		"setModuleDefinitionFile": strFunc("setModuleDefinitionFile", 1, 1, func(s []string) error {
			return g.SetModuleDefinitionFile(s[0])
		}),
		"setSubsystem": strFunc("setSubsystem", 1, 1, func(s []string) error {
			return g.SetSubsystem(s[0])
		}),
		"setOutputDir": strFunc("setOutputDir", 1, 1, func(s []string) error {
			return g.SetOutputDir(s[0])
		}),
		"setOutputName": strFunc("setOutputName", 1, 1, func(s []string) error {
			return g.SetOutputName(s[0])
		}),
	}

	for name, kind := range map[string]project.Kind{
		"App":       project.App,
		"SharedApp": project.SharedApp,
		"Lib":       project.Lib,
		"SharedLib": project.SharedLib,
		"ActiveX":   project.ActiveXPlugin,
		"Safari":    project.SafariPlugin,
		"Managed":   project.ManagedProject,
	} {
		fns["begin"+name+"Config"] = in.beginFunc("begin"+name+"Config", kind)
		fns["end"+name+"Config"] = in.endFunc(kind)
	}
	return fns
}
