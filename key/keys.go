// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Translate Window - these keys shape the translate/repeat workflow.
const (
	WindowSeconds     = "window.seconds"
	TranslateAudio    = "translate.audio"
	TranslateSubtitle = "translate.subtitle"
	RepeatSubtitle    = "repeat.subtitle"
)

// On-Screen Display - these keys control the transient text shown over the video.
const (
	OSDPosition = "osd.position"
)

// Hotkeys - these keys name the player key bindings that trigger the workflow.
const (
	KeysTranslate = "keys.translate"
	KeysRepeat    = "keys.repeat"
)

// Media Player - these keys locate and launch the mpv instance being controlled.
const (
	MPVSocket = "mpv.socket"
	MPVBinary = "mpv.binary"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these settings govern terminal output.
const (
	CliColored   = "cli.colored"
	IconsVariant = "icons.variant"
)
