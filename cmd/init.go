// projgen init [name], projgen new [path]
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/qobs-build/projgen/internal/msg"
	"github.com/spf13/cobra"
)

func writefile(content string, elem ...string) {
	path := filepath.Join(elem...)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err = os.WriteFile(path, []byte(content), 0o644); err != nil {
			msg.Fatal("create file %s: %v", path, err)
		}
		fmt.Printf("%s file: %s\n", color.HiGreenString("Created"), filepath.ToSlash(path))
	}
}

func mkdir(elem ...string) {
	path := filepath.Join(elem...)
	if err := os.MkdirAll(path, 0o755); err != nil {
		msg.Fatal("mkdir %s: %v", path, err)
	}
}

func getProgramName() string {
	if len(os.Args) == 0 {
		return "projgen"
	}
	basename := filepath.Base(os.Args[0])
	return strings.TrimSuffix(basename, filepath.Ext(basename))
}

// initIn lays out buildFiles/config for a new root
func initIn(dir, name string, plugin bool) {
	cfg := filepath.Join(dir, "buildFiles", "config")
	mkdir(cfg, "libs")
	mkdir(cfg, "modules")

	// buildFiles/config/project.conf
	conf := `// ` + name + ` build description
includeLib("Core")

beginAppConfig("` + name + `")
	addSrcDir("src/` + name + `", true)
	addDependency("Core")
	platform == "win32" ? addDefine("WIN32") : nil
	setSubsystem("Console")
endAppConfig()
`
	if plugin {
		conf += `
beginActiveXConfig("` + name + `Plugin")
	addSrcDir("src/plugin", true)
	addDependency("Core")
endActiveXConfig()
`
	}
	conf += `
beginSolution("` + name + `")
	addProjectRef("` + name + `")
	addProjectRef("Core")
` + func() string {
		if plugin {
			return `	addProjectRef("` + name + `Plugin")
`
		}
		return ""
	}() + `	setStartupProject("` + name + `")
endSolution()

includeProjectCode()
`
	writefile(conf, cfg, "project.conf")

	// buildFiles/config/libs/Core.conf
	writefile(`beginLibConfig("Core")
	addSrcDir("src/core", true)
	addIncludePath("src/core")
endLibConfig()
`, cfg, "libs", "Core.conf")

	// buildFiles/config/settings.toml
	writefile(`startup_project = "`+name+`"

[flags]
tool_build = false
dll_runtime = true

[flags.'platform == "win32"']
watermark = true

[deployment]
company = "Company"
company_key = "company"
product_name = "`+name+`"
plugin_name = "`+name+`Plugin"
version = "1.0"

[browsers]
iexplore = "C:/Program Files/Internet Explorer/iexplore.exe"
firefox = "C:/Program Files/Mozilla Firefox/firefox.exe"
`, cfg, "settings.toml")

	mkdir(dir, "src", name)
	mkdir(dir, "src", "core")

	// src/<name>/main.cpp
	writefile(`#include <stdio.h>
#include "core.h"

int main(void) {
    core_hello();
    return 0;
}
`, dir, "src", name, "main.cpp")

	// src/core/core.h, src/core/core.cpp
	writefile(`#pragma once

void core_hello();
`, dir, "src", "core", "core.h")
	writefile(`#include <stdio.h>
#include "core.h"

void core_hello() {
    puts("Hello, World!");
}
`, dir, "src", "core", "core.cpp")

	if plugin {
		mkdir(dir, "src", "plugin")
		writefile(`// plugin entry points go here
`, dir, "src", "plugin", "plugin.cpp")
	}

	// .gitignore
	writefile(`buildFiles/VisualStudio 2010/
buildFiles/Make/
web/
`, dir, ".gitignore")

	programName := getProgramName()
	fmt.Printf("You can now do %s to generate projects, or %s to list build targets.\n", color.HiCyanString(programName+" "+dir), color.HiCyanString(programName+" targets "+dir))
}

var withPlugin bool

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a build description in the current directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		initIn(".", args[0], withPlugin)
	},
}

var newCmd = &cobra.Command{
	Use:   "new [path]",
	Short: "Create a build description in a new directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		mkdir(args[0])
		initIn(args[0], filepath.Base(args[0]), withPlugin)
	},
}

func init() {
	// projgen init subcommand
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&withPlugin, "plugin", false, "Also create an ActiveX plugin project")

	// projgen new subcommand
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().BoolVar(&withPlugin, "plugin", false, "Also create an ActiveX plugin project")
}
