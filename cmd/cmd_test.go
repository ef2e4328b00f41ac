package cmd

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/tip-cli/tip/config"
	"github.com/tip-cli/tip/filesystem"
	"github.com/tip-cli/tip/key"
	"github.com/tip-cli/tip/where"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestParseValue(t *testing.T) {
	Convey("parseValue follows the type of the default", t, func() {
		v, err := parseValue(config.Default[key.WindowSeconds], "8")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 8)

		_, err = parseValue(config.Default[key.WindowSeconds], "eight")
		So(err, ShouldNotBeNil)

		v, err = parseValue(config.Default[key.LogsWrite], "true")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, true)

		v, err = parseValue(config.Default[key.KeysRepeat], "Alt+r")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, "Alt+r")
	})
}

func TestErrUnknownKey(t *testing.T) {
	Convey("An unknown key suggests the closest one", t, func() {
		err := errUnknownKey("window.second")
		So(err.Error(), ShouldContainSubstring, key.WindowSeconds)
	})
}

func TestSocketPath(t *testing.T) {
	Convey("Given no configured socket", t, func() {
		viper.Set(key.MPVSocket, "")
		Reset(func() { viper.Set(key.MPVSocket, "") })

		Convey("The default socket is used", func() {
			So(socketPath(), ShouldEqual, where.Socket())
		})

		Convey("A configured socket wins", func() {
			viper.Set(key.MPVSocket, "/run/mpv.sock")
			So(socketPath(), ShouldEqual, "/run/mpv.sock")
		})
	})
}
