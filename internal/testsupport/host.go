// Package testsupport provides in-memory host objects for controller tests.
package testsupport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tip-cli/tip/host"
	"golang.org/x/exp/slices"
)

// ErrNoSuchChoice is returned by Session.SetTrack for a choice the session does not list.
var ErrNoSuchChoice = errors.New("no such choice")

// Session is an in-memory host.Session. It starts with one reference owned by the creator.
type Session struct {
	*host.Ref
	Name string

	mu        sync.Mutex
	position  time.Duration
	seekable  bool
	choices   map[host.Class][]host.Choice
	active    map[host.Class]host.Choice
	seeks     []time.Duration
	sets      map[host.Class]int
	listeners []host.SessionListener
	timeErr   error
}

// NewSession returns a seekable session positioned at pos with the given number of audio and
// subtitle tracks. Each class lists the Disabled choice first, then tracks with IDs 1..n.
// Logical index 0 is active for both classes.
func NewSession(name string, pos time.Duration, audio, subtitles int) *Session {
	s := &Session{
		Name:     name,
		position: pos,
		seekable: true,
		choices:  make(map[host.Class][]host.Choice),
		active:   make(map[host.Class]host.Choice),
		sets:     make(map[host.Class]int),
	}
	s.Ref = host.NewRef("session "+name, nil)

	for class, n := range map[host.Class]int{host.Audio: audio, host.Subtitle: subtitles} {
		list := []host.Choice{{ID: host.Disabled, Title: "Disable"}}
		for i := 1; i <= n; i++ {
			list = append(list, host.Choice{ID: int64(i), Title: fmt.Sprintf("%s %d", class, i)})
		}
		s.choices[class] = list
		s.active[class] = list[0]
	}
	return s
}

func (s *Session) Time() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timeErr != nil {
		return 0, s.timeErr
	}
	return s.position, nil
}

func (s *Session) SetTime(t time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = t
	s.seeks = append(s.seeks, t)
	return nil
}

func (s *Session) CanSeek() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seekable
}

func (s *Session) Choices(class host.Class) ([]host.Choice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.choices[class]), nil
}

func (s *Session) Track(class host.Class) (host.Choice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[class], nil
}

func (s *Session) SetTrack(class host.Class, choice host.Choice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.choices[class], choice) {
		return fmt.Errorf("%s %s: %w", class, choice, ErrNoSuchChoice)
	}
	s.active[class] = choice
	s.sets[class]++
	return nil
}

func (s *Session) AddListener(l host.SessionListener) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
	return nil
}

func (s *Session) RemoveListener(l host.SessionListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = slices.DeleteFunc(s.listeners, func(x host.SessionListener) bool { return x == l })
}

// SetSeekable changes the seek capability.
func (s *Session) SetSeekable(ok bool) {
	s.mu.Lock()
	s.seekable = ok
	s.mu.Unlock()
}

// SetPosition moves the playback position without recording a seek.
func (s *Session) SetPosition(t time.Duration) {
	s.mu.Lock()
	s.position = t
	s.mu.Unlock()
}

// FailTime makes Time return err until called with nil.
func (s *Session) FailTime(err error) {
	s.mu.Lock()
	s.timeErr = err
	s.mu.Unlock()
}

// Activate makes the choice at index active for class without counting it as a SetTrack call.
func (s *Session) Activate(class host.Class, index int) {
	s.mu.Lock()
	s.active[class] = s.choices[class][index]
	s.mu.Unlock()
}

// ActiveIndex returns the logical index of the active choice for class, or -1.
func (s *Session) ActiveIndex(class host.Class) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Index(s.choices[class], s.active[class])
}

// SetTrackCalls returns how many times SetTrack succeeded for class.
func (s *Session) SetTrackCalls(class host.Class) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[class]
}

// Seeks returns every position passed to SetTime.
func (s *Session) Seeks() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.seeks)
}

// Listeners returns the number of registered session listeners.
func (s *Session) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// AttachOutput delivers an output-attached event to every listener.
func (s *Session) AttachOutput(out host.Output) {
	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.OnSessionEvent(s, host.Event{Kind: host.EventOutputAttached, Output: out})
	}
}

// Display is one recorded Output.Display call.
type Display struct {
	Region   host.Region
	Duration time.Duration
	Text     string
}

// Output is an in-memory host.Output recording what it displays.
type Output struct {
	*host.Ref

	mu       sync.Mutex
	displays []Display
}

// NewOutput returns an output holding one reference owned by the creator.
func NewOutput(name string) *Output {
	return &Output{Ref: host.NewRef("output "+name, nil)}
}

func (o *Output) Display(region host.Region, d time.Duration, text string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.displays = append(o.displays, Display{Region: region, Duration: d, Text: text})
	return nil
}

// Displays returns every recorded display call.
func (o *Output) Displays() []Display {
	o.mu.Lock()
	defer o.mu.Unlock()
	return slices.Clone(o.displays)
}

// Host is an in-memory host.Host whose events are driven by the test.
type Host struct {
	mu        sync.Mutex
	current   host.Session
	keys      []host.KeyListener
	playlists []host.PlaylistListener

	// FailKeys makes AddKeyListener fail.
	FailKeys error
}

func (h *Host) AddKeyListener(l host.KeyListener) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.FailKeys != nil {
		return h.FailKeys
	}
	h.keys = append(h.keys, l)
	return nil
}

func (h *Host) RemoveKeyListener(l host.KeyListener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys = slices.DeleteFunc(h.keys, func(x host.KeyListener) bool { return x == l })
}

func (h *Host) AddPlaylistListener(l host.PlaylistListener) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playlists = append(h.playlists, l)
	return nil
}

func (h *Host) RemovePlaylistListener(l host.PlaylistListener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playlists = slices.DeleteFunc(h.playlists, func(x host.PlaylistListener) bool { return x == l })
}

func (h *Host) Current() host.Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current != nil {
		h.current.Hold()
	}
	return h.current
}

// Listeners returns the number of key and playlist listeners.
func (h *Host) Listeners() (keys, playlists int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.keys), len(h.playlists)
}

// Press delivers a key press to every key listener.
func (h *Host) Press(code host.KeyCode) {
	h.mu.Lock()
	keys := slices.Clone(h.keys)
	h.mu.Unlock()

	for _, l := range keys {
		l.OnKey(code)
	}
}

// SetCurrent makes s the current session, without notifying listeners.
func (h *Host) SetCurrent(s host.Session) {
	if s != nil {
		s.Hold()
	}
	h.mu.Lock()
	old := h.current
	h.current = s
	h.mu.Unlock()
	if old != nil {
		old.Release()
	}
}

// Play makes s the current session and notifies playlist listeners. s may be nil.
func (h *Host) Play(s host.Session) {
	h.SetCurrent(s)

	h.mu.Lock()
	playlists := slices.Clone(h.playlists)
	h.mu.Unlock()

	for _, l := range playlists {
		l.OnCurrentChanged(s)
	}
}

// Timer is a manually fired scheduler.
type Timer struct {
	mu      sync.Mutex
	fn      func()
	pending bool
	delay   time.Duration
	period  time.Duration
	armed   int
	stopped bool
}

// NewTimer matches the controller's timer factory signature.
func NewTimer(fn func()) *Timer {
	return &Timer{fn: fn}
}

func (t *Timer) Schedule(delay, period time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = true
	t.delay, t.period = delay, period
	t.armed++
}

func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = false
}

func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = false
	t.stopped = true
}

// Pending reports whether a fire is scheduled, and its delay.
func (t *Timer) Pending() (bool, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending, t.delay
}

// Armed returns how many times Schedule was called.
func (t *Timer) Armed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

// Stopped reports whether Stop was called.
func (t *Timer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Fire runs the callback if a fire is pending and reports whether it did.
func (t *Timer) Fire() bool {
	t.mu.Lock()
	if !t.pending {
		t.mu.Unlock()
		return false
	}
	if t.period == 0 {
		t.pending = false
	}
	fn := t.fn
	t.mu.Unlock()

	fn()
	return true
}

// FireStale runs the callback regardless of the pending state, as a fire already in flight would.
func (t *Timer) FireStale() {
	t.fn()
}
