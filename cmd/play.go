package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tip-cli/tip/key"
	"github.com/tip-cli/tip/log"
	"github.com/tip-cli/tip/player"
	"github.com/tip-cli/tip/where"
)

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().String("mpv", "", "mpv executable to launch")
	_ = viper.BindPFlag(key.MPVBinary, playCmd.Flags().Lookup("mpv"))
}

// playCmd launches mpv on a file or URL and attaches to it.
var playCmd = &cobra.Command{
	Use:   "play FILE|URL",
	Short: "Play a file or URL in a new mpv with the hotkeys bound",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		CheckDependencies()

		socket := filepath.Join(where.Temp(), fmt.Sprintf("mpv-%s.sock", uuid.NewString()[:8]))
		mpv := player.NewMPV(viper.GetString(key.MPVBinary), socket)
		handleErr(mpv.Launch(args[0]))

		err := attach(socket, mpv.Wait())
		if cerr := mpv.Close(); cerr != nil {
			log.Warnf("close mpv: %v", cerr)
		}
		handleErr(err)
	},
}
