package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tip-cli/tip/color"
	"github.com/tip-cli/tip/host"
	"github.com/tip-cli/tip/icon"
	"github.com/tip-cli/tip/key"
	"github.com/tip-cli/tip/player"
	"github.com/tip-cli/tip/style"
	"github.com/tip-cli/tip/util"
)

func init() {
	rootCmd.AddCommand(tracksCmd)
	tracksCmd.SetOut(os.Stdout)
}

// tracksCmd lists the track choices of the playing file with the indices used in the config.
var tracksCmd = &cobra.Command{
	Use:   "tracks",
	Short: "List the audio and subtitle tracks of the playing file with their indices",
	Long: fmt.Sprintf(
		"List the audio and subtitle tracks of the file playing in mpv.\nThe index column is what %s, %s and %s expect; index 0 disables the track.",
		key.TranslateAudio, key.TranslateSubtitle, key.RepeatSubtitle,
	),
	Run: func(cmd *cobra.Command, args []string) {
		h := player.NewHost(player.NewClient(socketPath()))
		handleErr(h.Start())
		defer h.Stop()

		s := h.Current()
		if s == nil {
			handleErr(errors.New("nothing is playing"))
		}
		defer s.Release()

		width := 80
		if w, _, err := util.TerminalSize(); err == nil && w > 0 {
			width = w
		}

		for i, class := range []host.Class{host.Audio, host.Subtitle} {
			choices, err := s.Choices(class)
			handleErr(err)
			active, err := s.Track(class)
			handleErr(err)

			cmd.Println(style.New().Bold(true).Foreground(color.HiPurple).Render(util.Capitalize(class.String())))
			for index, choice := range choices {
				mark := " "
				if choice == active {
					mark = style.Fg(color.Green)(icon.Get(icon.Mark))
				}
				cmd.Printf(
					"%s %s %s\n",
					mark,
					style.Fg(color.Yellow)(fmt.Sprintf("%2d", index)),
					style.Truncate(util.Max(width-8, 10))(choice.Title),
				)
			}

			if i == 0 {
				cmd.Println()
			}
		}
	},
}
