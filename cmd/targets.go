// projgen targets [root]
package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/qobs-build/projgen/internal/msg"
	"github.com/spf13/cobra"
)

var targetsCmd = &cobra.Command{
	Use:   "targets [root]",
	Short: "List the build targets and the platforms they support",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		root := "."
		if len(args) > 0 {
			root = args[0]
		}
		targets, err := loadTargets(root)
		if err != nil {
			msg.Fatal("%v", err)
		}
		for _, t := range targets.All() {
			fmt.Printf("%s %s -> %s\n",
				color.HiCyanString(t.Name),
				color.HiBlackString("["+strings.Join(t.Platforms(), ", ")+"]"),
				t.OutputDir,
			)
		}
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}
