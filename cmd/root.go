// Package cmd implements the command-line interface for tip.
package cmd

import (
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tip-cli/tip/color"
	"github.com/tip-cli/tip/constant"
	"github.com/tip-cli/tip/icon"
	"github.com/tip-cli/tip/key"
	"github.com/tip-cli/tip/log"
	"github.com/tip-cli/tip/style"
	"github.com/tip-cli/tip/where"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().StringP("socket", "s", "", "mpv IPC socket, as given to mpv's --input-ipc-server")
	lo.Must0(viper.BindPFlag(key.MPVSocket, rootCmd.PersistentFlags().Lookup("socket")))
}

// rootCmd attaches the translate hotkeys to a running mpv.
var rootCmd = &cobra.Command{
	Use:   constant.Tip,
	Short: "Translate it, please: replay the last seconds of a film in another language",
	Long: style.Bold("tip") + " binds two hotkeys in a running mpv.\n\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    translate") +
		"  switch to the translation tracks and replay the last few seconds\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    repeat   ") +
		"  replay the same seconds again with the original audio\n\n" +
		style.Italic("Start mpv with --input-ipc-server="+where.Socket()+" or pass --socket.\n"+
			"The keys stay bound in mpv after tip exits and do nothing there."),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		handleErr(attach(socketPath(), nil))
	},
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// socketPath returns the configured mpv socket, falling back to the default location.
func socketPath() string {
	if s := strings.TrimSpace(viper.GetString(key.MPVSocket)); s != "" {
		return s
	}
	return where.Socket()
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.ErrorTitle(icon.Get(icon.Fail)+" error"), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
