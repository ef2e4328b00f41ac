package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"github.com/tip-cli/tip/key"
	"github.com/tip-cli/tip/log"
)

// ErrConfigMissing reports a setting that is absent or unreadable.
var ErrConfigMissing = errors.New("setting is missing")

// Disabled is the value a track or window setting takes when it is missing.
const Disabled = -1

// Settings is the controller configuration, read once when the controller opens.
type Settings struct {
	WindowSeconds     int
	TranslateAudio    int
	TranslateSubtitle int
	RepeatSubtitle    int
	OSDPosition       int

	TranslateKey string
	RepeatKey    string
}

// LoadSettings reads the controller settings from viper.
// A missing or malformed integer falls back to Disabled and an empty key leaves the hotkey
// unbound; each is logged and reported in the returned error, which never prevents using the settings.
func LoadSettings() (Settings, error) {
	var errs []error

	integer := func(k string) int {
		n, err := cast.ToIntE(viper.Get(k))
		if viper.Get(k) == nil || err != nil {
			err = fmt.Errorf("%s: %w", k, ErrConfigMissing)
			log.Errorf("%s is not set, using %d", k, Disabled)
			errs = append(errs, err)
			return Disabled
		}
		return n
	}

	hotkey := func(k string) string {
		name := strings.TrimSpace(viper.GetString(k))
		if name == "" {
			log.Errorf("%s is not set, hotkey stays unbound", k)
			errs = append(errs, fmt.Errorf("%s: %w", k, ErrConfigMissing))
		}
		return name
	}

	s := Settings{
		WindowSeconds:     integer(key.WindowSeconds),
		TranslateAudio:    integer(key.TranslateAudio),
		TranslateSubtitle: integer(key.TranslateSubtitle),
		RepeatSubtitle:    integer(key.RepeatSubtitle),
		OSDPosition:       integer(key.OSDPosition),
		TranslateKey:      hotkey(key.KeysTranslate),
		RepeatKey:         hotkey(key.KeysRepeat),
	}

	return s, errors.Join(errs...)
}
