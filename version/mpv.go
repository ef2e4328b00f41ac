package version

import "fmt"

// MinMPV is the oldest mpv with the keybind command.
const MinMPV = "0.34.0"

// CheckMPV reports an error when the mpv-version property names an mpv older than MinMPV.
// Development builds without a version number pass.
func CheckMPV(mpvVersion string) error {
	cmp, err := Compare(mpvVersion, MinMPV)
	if err != nil {
		return nil
	}
	if cmp < 0 {
		return fmt.Errorf("%s is too old, hotkeys need mpv %s or newer", mpvVersion, MinMPV)
	}
	return nil
}
