package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/tip-cli/tip/icon"
	"github.com/tip-cli/tip/util"
	"github.com/tip-cli/tip/where"
)

// clearTarget defines a filesystem resource eligible for cleanup.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
}

// clearTargets lists every artifact that can be cleared.
var clearTargets = []clearTarget{
	{"logs", "logs", mo.Some("l"), where.Logs},
	{"temp directory", "temp", mo.Some("t"), where.Temp},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
}

// clearCmd removes logs and leftover sockets and locks.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear logs and temporary files",
	Long:  "Clear logs and temporary files. Clearing the temp directory while tip is attached releases nothing: locks are held open by the running process.",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}
			anyCleared = true

			e := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))
			removed, err := util.Delete(target.location())
			e()
			handleErr(err)
			fmt.Printf("%s %s cleared (%s)\n", icon.Get(icon.Success), util.Capitalize(target.name), util.Quantify(removed, "file", "files"))
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}
