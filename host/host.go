// Package host declares the contracts a media-playback host offers to the translate controller.
//
// Sessions and outputs are owned by the host. The controller only keeps them between a Hold and the
// matching Release, so an implementation is free to tear them down once every holder is gone.
package host

import (
	"fmt"
	"time"
)

// Class identifies a family of selectable tracks.
type Class int

const (
	Audio Class = iota
	Subtitle
)

func (c Class) String() string {
	switch c {
	case Audio:
		return "audio"
	case Subtitle:
		return "subtitle"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Disabled is the choice ID that turns a track class off.
const Disabled int64 = -1

// Choice is one selectable entry of a track class.
type Choice struct {
	ID    int64
	Title string
}

// IsDisabled reports whether the choice turns its track class off.
func (c Choice) IsDisabled() bool {
	return c.ID == Disabled
}

func (c Choice) String() string {
	if c.Title == "" {
		return fmt.Sprintf("#%d", c.ID)
	}
	return fmt.Sprintf("#%d %s", c.ID, c.Title)
}

// KeyCode is a host key identifier delivered by the key stream.
type KeyCode int64

// Region is an on-screen text anchor in numeric keypad layout: 1 is bottom-left, 9 is top-right.
type Region int

const (
	BottomLeft Region = iota + 1
	Bottom
	BottomRight
	Left
	Center
	Right
	TopLeft
	Top
	TopRight
)

// Valid reports whether r names one of the nine anchors.
func (r Region) Valid() bool {
	return r >= BottomLeft && r <= TopRight
}

// Handle is a shared reference to a host object.
type Handle interface {
	// Hold acquires one more reference.
	Hold()
	// Release drops one reference. Every Hold is paired with exactly one Release.
	Release()
}

// Output is a surface that can show transient text over the video.
type Output interface {
	Handle
	Display(region Region, d time.Duration, text string) error
}

// EventKind discriminates session-internal events.
type EventKind int

const (
	EventOther EventKind = iota
	// EventOutputAttached reports a new video output for the session. Event.Output is borrowed.
	EventOutputAttached
)

// Event is a session-internal notification.
type Event struct {
	Kind   EventKind
	Output Output
}

// SessionListener receives session-internal events. The session argument is borrowed for the call.
type SessionListener interface {
	OnSessionEvent(s Session, ev Event)
}

// Session is the active playback unit.
type Session interface {
	Handle

	// Time returns the current playback position.
	Time() (time.Duration, error)
	// SetTime seeks to an absolute position.
	SetTime(t time.Duration) error
	// CanSeek reports the seek capability of the session.
	CanSeek() bool

	// Choices lists the selectable entries of a class in their logical order.
	Choices(class Class) ([]Choice, error)
	// Track returns the active entry of a class.
	Track(class Class) (Choice, error)
	// SetTrack activates an entry of a class.
	SetTrack(class Class, choice Choice) error

	AddListener(l SessionListener) error
	RemoveListener(l SessionListener)
}

// KeyListener receives process-wide key presses.
type KeyListener interface {
	OnKey(code KeyCode)
}

// PlaylistListener receives playlist current-item changes. The session is borrowed and may be nil.
type PlaylistListener interface {
	OnCurrentChanged(s Session)
}

// Host is the playback runtime the controller attaches to.
type Host interface {
	AddKeyListener(l KeyListener) error
	RemoveKeyListener(l KeyListener)

	AddPlaylistListener(l PlaylistListener) error
	RemovePlaylistListener(l PlaylistListener)

	// Current returns a held reference to the current session, or nil.
	Current() Session
}
