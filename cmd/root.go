// projgen [root] [description], projgen generate [root] [description]
package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/qobs-build/projgen/internal/browser"
	"github.com/qobs-build/projgen/internal/config"
	"github.com/qobs-build/projgen/internal/generator"
	"github.com/qobs-build/projgen/internal/msg"
	"github.com/qobs-build/projgen/internal/render"
	"github.com/qobs-build/projgen/internal/scm"
	"github.com/qobs-build/projgen/internal/script"
	"github.com/qobs-build/projgen/internal/target"
	"github.com/spf13/cobra"
)

var (
	flagJobs      int
	flagDiff      bool
	flagDryRun    bool
	flagVerbose   bool
	flagToolBuild bool
	flagDemoBuild bool
	flagWatermark bool
	flagPlatform  EnumValue = NewEnumValue(config.DefaultPlatform(), map[string]string{
		"win32": "Visual Studio projects",
		"mac":   "Makefiles for macOS",
		"linux": "Makefiles for Linux",
	})
)

// loadTargets reads buildFiles/config/targets.toml, falling back to the built-in targets.
func loadTargets(root string) (*target.Registry, error) {
	path := filepath.Join(root, filepath.FromSlash(generator.ConfigDir), "targets.toml")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return target.Default(), nil
	}
	return target.LoadFile(path)
}

func loadSettings(cmd *cobra.Command, root string) (*config.Settings, string, error) {
	platform := flagPlatform.Value()
	settings, err := config.ParseFile(filepath.Join(root, filepath.FromSlash(generator.ConfigDir), "settings.toml"), config.NewEnv(platform))
	if err != nil {
		return nil, "", err
	}

	// command line flags win over the settings file
	flags := cmd.Flags()
	if flags.Changed("platform") || settings.Platform == "" {
		settings.Platform = platform
	}
	if flags.Changed("tool-build") {
		settings.Flags.ToolBuild = flagToolBuild
	}
	if flags.Changed("demo-build") {
		settings.Flags.DemoBuild = flagDemoBuild
	}
	if flags.Changed("watermark") {
		settings.Flags.Watermark = flagWatermark
	}
	return settings, settings.Platform, nil
}

func generate(cmd *cobra.Command, root, description string) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	if description == "" {
		description = filepath.Join(root, filepath.FromSlash(generator.ConfigDir), "project.conf")
	}

	settings, platform, err := loadSettings(cmd, root)
	if err != nil {
		return err
	}
	targets, err := loadTargets(root)
	if err != nil {
		return err
	}

	g := generator.New(generator.Options{
		Root:     root,
		Platform: platform,
		Targets:  targets,
		Settings: settings,
	})
	in := script.New(g)
	if err := in.RunFile(description); err != nil {
		return err
	}
	msg.Info("configured %d projects and %d solutions for %s", g.Projects().Len(), len(g.Solutions().All()), platform)

	revision, err := scm.Revision(root)
	if err != nil {
		msg.Warn("could not read the source revision: %v", err)
	}

	emitter := &render.Emitter{DryRun: flagDryRun}
	if flagDiff {
		emitter.Diff = os.Stdout
	}
	if flagVerbose {
		emitter.OnWrite = func(path string) {
			msg.Debug("wrote %s", filepath.ToSlash(path))
		}
	}

	var progress io.Writer
	if !flagVerbose && !flagDiff {
		progress = os.Stdout
	}

	err = g.Generate(generator.GenerateOptions{
		Jobs:     flagJobs,
		Engine:   render.NewEngine(filepath.Join(root, "buildFiles", "templates")),
		Emitter:  emitter,
		Locator:  browser.Static(settings.Browsers),
		Revision: revision,
		Progress: progress,
	})
	if err != nil {
		return err
	}

	verb := "wrote"
	if flagDryRun {
		verb = "would write"
	}
	msg.Info("%s %d files", verb, len(emitter.Written()))
	return nil
}

func doGenerate(cmd *cobra.Command, args []string) {
	msg.Verbose = flagVerbose

	root, description := ".", ""
	if len(args) > 0 {
		root = args[0]
	}
	if len(args) > 1 {
		description = args[1]
	}
	if err := generate(cmd, root, description); err != nil {
		msg.Fatal("%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "projgen [root] [description]",
	Short: "Generate IDE projects and solutions from a build description",
	Long: `Generate IDE projects and solutions from a build description.
The description defaults to buildFiles/config/project.conf under the root, the root to "."`,
	Args: cobra.MaximumNArgs(2),
	Run:  doGenerate,
}

var generateCmd = &cobra.Command{
	Use:   "generate [root] [description]",
	Short: "Generate projects and solutions",
	Args:  cobra.MaximumNArgs(2),
	Run:   doGenerate,
}

func init() {
	addGenerateFlags(rootCmd)

	// projgen generate subcommand
	rootCmd.AddCommand(generateCmd)
	addGenerateFlags(generateCmd)
}

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().VarP(&flagPlatform, "platform", "p", "Platform to generate for, one of "+flagPlatform.HelpString())
	cmd.RegisterFlagCompletionFunc("platform", flagPlatform.CompletionFunc())
	cmd.Flags().IntVarP(&flagJobs, "jobs", "j", 1, "Number of source directories scanned in parallel")
	cmd.Flags().BoolVar(&flagDiff, "diff", false, "Print the changes to generated files")
	cmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "Do not write anything")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print debug messages")
	cmd.Flags().BoolVar(&flagToolBuild, "tool-build", false, "Set the tool_build flag")
	cmd.Flags().BoolVar(&flagDemoBuild, "demo-build", false, "Set the demo_build flag")
	cmd.Flags().BoolVar(&flagWatermark, "watermark", false, "Set the watermark flag")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
