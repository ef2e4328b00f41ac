// Package translate implements the translate/repeat workflow.
//
// Translate switches to the configured alternate tracks, jumps back one window and plays it.
// Repeat replays the same window with the original audio. When the window elapses without a
// Repeat, the auto-revert timer restores the tracks that were active before the first Translate.
package translate

import (
	"sync"
	"time"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"github.com/tip-cli/tip/binding"
	"github.com/tip-cli/tip/host"
	"github.com/tip-cli/tip/log"
	"github.com/tip-cli/tip/track"
)

// On-screen labels of the two workflow actions.
const (
	LabelTranslate = "translate"
	LabelRepeat    = "repeat"
)

// Config fixes the workflow. Negative track indices disable the matching selection.
type Config struct {
	Window            time.Duration
	TranslateAudio    int
	TranslateSubtitle int
	RepeatSubtitle    int
	// Region anchors the on-screen text. An invalid region turns the text off.
	Region host.Region
}

// Scheduler is the auto-revert timer. Schedule replaces any pending fire.
type Scheduler interface {
	Schedule(delay, period time.Duration)
	Cancel()
}

// State is the phase of the workflow.
type State int

const (
	// Idle means no origin tracks are captured.
	Idle State = iota
	// Captured means the origin tracks are remembered and a window may be armed.
	Captured
)

func (s State) String() string {
	if s == Captured {
		return "captured"
	}
	return "idle"
}

// Machine holds the workflow state of one controller.
//
// Every transition runs under mu. Snapshots must be taken before calling in, so the binding lock
// is never acquired while mu is held. Each snapshot carries the binding epoch; a snapshot older
// than the machine is ignored and a newer one resets the machine first.
type Machine struct {
	cfg   Config
	timer Scheduler
	log   *logrus.Entry

	mu             sync.Mutex
	epoch          uint64
	captured       bool
	originAudio    mo.Option[host.Choice]
	originSubtitle mo.Option[host.Choice]
	start, end     time.Duration
	windowed       bool
	armed          bool
}

// New returns an idle machine. entry may be nil.
func New(cfg Config, timer Scheduler, entry *logrus.Entry) *Machine {
	if entry == nil {
		entry = log.WithFields(nil)
	}
	return &Machine{cfg: cfg, timer: timer, log: entry}
}

// Translate captures the origin tracks if needed, switches to the translate tracks and plays the
// window ending at the current position.
func (m *Machine) Translate(snap binding.Snapshot) {
	s := snap.Session
	if s == nil {
		m.log.Debug("translate: no session")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.adopt(snap.Epoch) || !s.CanSeek() {
		m.log.WithField("epoch", snap.Epoch).Debug("translate: session is stale or not seekable")
		return
	}

	// nothing is touched until the window is known
	now, err := s.Time()
	if err != nil {
		m.log.WithError(err).Warn("translate: read position")
		return
	}

	if !m.captured {
		m.originAudio = m.current(s, host.Audio)
		m.originSubtitle = m.current(s, host.Subtitle)
		m.captured = true
	}

	m.selectTrack(s, host.Audio, m.cfg.TranslateAudio)
	m.selectTrack(s, host.Subtitle, m.cfg.TranslateSubtitle)

	m.end = now
	m.start = now - m.cfg.Window
	m.windowed = true

	m.play(snap, LabelTranslate)
}

// Repeat replays the last window with the repeat subtitle and the origin audio.
func (m *Machine) Repeat(snap binding.Snapshot) {
	s := snap.Session
	if s == nil {
		m.log.Debug("repeat: no session")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.adopt(snap.Epoch) || !m.captured || !m.windowed {
		m.log.Debug("repeat: nothing to repeat")
		return
	}
	if !s.CanSeek() {
		m.log.Debug("repeat: session is not seekable")
		return
	}

	m.selectTrack(s, host.Subtitle, m.cfg.RepeatSubtitle)
	if m.cfg.TranslateAudio >= 0 {
		m.restore(s, host.Audio, m.originAudio)
	}

	m.play(snap, LabelRepeat)
}

// Expire is the auto-revert: it restores the origin tracks and returns to Idle.
// A fire for a window that was cancelled, reset or belongs to another session does nothing.
func (m *Machine) Expire(snap binding.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.adopt(snap.Epoch) || !m.armed {
		m.log.Debug("expire: no window armed for this session")
		return
	}
	m.armed = false

	if s := snap.Session; s != nil && m.captured {
		if m.cfg.TranslateAudio >= 0 {
			m.restore(s, host.Audio, m.originAudio)
		}
		if m.cfg.TranslateSubtitle >= 0 || m.cfg.RepeatSubtitle >= 0 {
			m.restore(s, host.Subtitle, m.originSubtitle)
		}
	}

	m.forget()
	m.log.Debug("expire: origin tracks restored")
}

// Reset moves the machine to the session identified by epoch, dropping any captured state.
// Epochs not newer than the current one are ignored.
func (m *Machine) Reset(epoch uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adopt(epoch)
}

// Close drops all state and cancels the pending auto-revert.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forget()
	m.timer.Cancel()
	m.armed = false
}

// State returns the current phase.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.captured {
		return Captured
	}
	return Idle
}

// Origin returns the captured origin tracks.
func (m *Machine) Origin() (audio, subtitle mo.Option[host.Choice]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.originAudio, m.originSubtitle
}

// Window returns the last window bounds.
func (m *Machine) Window() (start, end time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.start, m.end
}

// adopt must be called with mu held. It reports whether epoch is the current session.
func (m *Machine) adopt(epoch uint64) bool {
	switch {
	case epoch < m.epoch:
		return false
	case epoch > m.epoch:
		m.epoch = epoch
		m.forget()
		if m.armed {
			m.timer.Cancel()
			m.armed = false
		}
	}
	return true
}

func (m *Machine) forget() {
	m.captured = false
	m.originAudio = mo.None[host.Choice]()
	m.originSubtitle = mo.None[host.Choice]()
	m.start, m.end = 0, 0
	m.windowed = false
}

func (m *Machine) play(snap binding.Snapshot, label string) {
	if err := snap.Session.SetTime(m.start); err != nil {
		m.log.WithError(err).Warnf("%s: seek to %s", label, m.start)
	}

	if out := snap.Output; out != nil && m.cfg.Region.Valid() {
		if err := out.Display(m.cfg.Region, m.end-m.start, label); err != nil {
			m.log.WithError(err).Warnf("%s: display", label)
		}
	}

	m.timer.Schedule(m.cfg.Window, 0)
	m.armed = true
}

func (m *Machine) current(s host.Session, class host.Class) mo.Option[host.Choice] {
	c, err := s.Track(class)
	if err != nil {
		m.log.WithError(err).Warnf("capture %s track", class)
		return mo.None[host.Choice]()
	}
	return mo.Some(c)
}

func (m *Machine) restore(s host.Session, class host.Class, origin mo.Option[host.Choice]) {
	c, ok := origin.Get()
	if !ok {
		return
	}
	if err := s.SetTrack(class, c); err != nil {
		m.log.WithError(err).Warnf("restore %s track %s", class, c)
	}
}

func (m *Machine) selectTrack(s host.Session, class host.Class, index int) {
	if err := track.Select(s, class, index); err != nil {
		m.log.WithError(err).Warnf("select %s track %d", class, index)
	}
}
