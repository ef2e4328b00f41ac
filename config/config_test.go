package config

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/tip-cli/tip/filesystem"
	"github.com/tip-cli/tip/key"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("translate.audio")
			So(result, ShouldEqual, "translate_audio")
		})

		Convey("Env should carry the application prefix", func() {
			f := Default[key.WindowSeconds]
			So(f.Env(), ShouldEqual, "TIP_WINDOW_SECONDS")
		})
	})
}

func TestLoadSettings(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		So(Setup(), ShouldBeNil)
		Reset(func() {
			for _, k := range []string{key.WindowSeconds, key.TranslateSubtitle, key.KeysRepeat} {
				viper.Set(k, Default[k].Value)
			}
		})

		Convey("LoadSettings returns the defaults without error", func() {
			s, err := LoadSettings()
			So(err, ShouldBeNil)
			So(s.WindowSeconds, ShouldEqual, 5)
			So(s.TranslateAudio, ShouldEqual, 1)
			So(s.TranslateSubtitle, ShouldEqual, Disabled)
			So(s.OSDPosition, ShouldEqual, 9)
			So(s.TranslateKey, ShouldEqual, "Ctrl+t")
		})

		Convey("Numeric strings are accepted", func() {
			viper.Set(key.WindowSeconds, "7")
			s, err := LoadSettings()
			So(err, ShouldBeNil)
			So(s.WindowSeconds, ShouldEqual, 7)
		})

		Convey("A malformed value falls back to disabled", func() {
			viper.Set(key.TranslateSubtitle, "english")
			s, err := LoadSettings()
			So(errors.Is(err, ErrConfigMissing), ShouldBeTrue)
			So(s.TranslateSubtitle, ShouldEqual, Disabled)
			So(s.WindowSeconds, ShouldEqual, 5)
		})

		Convey("An empty hotkey is reported and left unbound", func() {
			viper.Set(key.KeysRepeat, "  ")
			s, err := LoadSettings()
			So(errors.Is(err, ErrConfigMissing), ShouldBeTrue)
			So(s.RepeatKey, ShouldBeEmpty)
		})
	})
}
