// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

const (
	// Tip is the canonical application identifier used for filesystem paths and CLI branding.
	Tip = "tip"

	// Version is the current application semantic version string.
	Version = "0.3.0"
)

// Build metadata, set with -ldflags at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

// Script message tags exchanged with mpv.
const (
	// KeyMessage prefixes client messages produced by the hotkeys bound by tip.
	KeyMessage = "tip-key"
)
