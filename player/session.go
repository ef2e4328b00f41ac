package player

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/tip-cli/tip/host"
	"golang.org/x/exp/slices"
)

// ErrSessionEnded is returned by a Session whose file is no longer loaded.
var ErrSessionEnded = errors.New("session ended")

// trackTypes maps track classes to mpv's track-list types and selection properties.
var trackTypes = map[host.Class]struct{ kind, property string }{
	host.Audio:    {"audio", "aid"},
	host.Subtitle: {"sub", "sid"},
}

// disabledTitle is the title of the choice that turns a class off.
const disabledTitle = "Disable"

// Session is one file loaded in mpv. It stops answering once the file is unloaded.
type Session struct {
	*host.Ref
	client *Client
	path   string

	mu        sync.Mutex
	ended     bool
	listeners []host.SessionListener
	output    *OSD
}

var _ host.Session = (*Session)(nil)

func newSession(client *Client, path string) *Session {
	return &Session{
		Ref:    host.NewRef("mpv session "+path, nil),
		client: client,
		path:   path,
	}
}

// Path returns the path or URL of the loaded file, if mpv reported one.
func (s *Session) Path() string {
	return s.path
}

func (s *Session) Time() (time.Duration, error) {
	if err := s.alive(); err != nil {
		return 0, err
	}

	pos, err := s.client.GetFloat("time-pos")
	if err != nil {
		return 0, err
	}
	return time.Duration(pos * float64(time.Second)), nil
}

// SetTime seeks to t. mpv reads negative absolute positions from the end of the file,
// so they are clamped to the start.
func (s *Session) SetTime(t time.Duration) error {
	if err := s.alive(); err != nil {
		return err
	}

	t = lo.Max([]time.Duration{t, 0})
	if _, err := s.client.Command("seek", t.Seconds(), "absolute+exact"); err != nil {
		return fmt.Errorf("seek to %s: %w", t, err)
	}
	return nil
}

func (s *Session) CanSeek() bool {
	if s.alive() != nil {
		return false
	}

	ok, err := s.client.GetBool("seekable")
	return err == nil && ok
}

func (s *Session) Choices(class host.Class) ([]host.Choice, error) {
	tracks, err := s.tracks(class)
	if err != nil {
		return nil, err
	}

	choices := []host.Choice{{ID: host.Disabled, Title: disabledTitle}}
	for _, t := range tracks {
		choices = append(choices, t.choice())
	}
	return choices, nil
}

func (s *Session) Track(class host.Class) (host.Choice, error) {
	tracks, err := s.tracks(class)
	if err != nil {
		return host.Choice{}, err
	}

	if t, ok := lo.Find(tracks, func(t trackEntry) bool { return t.Selected }); ok {
		return t.choice(), nil
	}
	return host.Choice{ID: host.Disabled, Title: disabledTitle}, nil
}

func (s *Session) SetTrack(class host.Class, choice host.Choice) error {
	if err := s.alive(); err != nil {
		return err
	}

	kind, ok := trackTypes[class]
	if !ok {
		return fmt.Errorf("unknown track class %s", class)
	}

	var value interface{} = choice.ID
	if choice.IsDisabled() {
		value = "no"
	}
	return s.client.Set(kind.property, value)
}

// AddListener subscribes l. An output that is already attached is announced to l right away.
func (s *Session) AddListener(l host.SessionListener) error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return ErrSessionEnded
	}
	s.listeners = append(s.listeners, l)
	out := s.output
	if out != nil {
		out.Hold()
	}
	s.mu.Unlock()

	if out != nil {
		l.OnSessionEvent(s, host.Event{Kind: host.EventOutputAttached, Output: out})
		out.Release()
	}
	return nil
}

func (s *Session) RemoveListener(l host.SessionListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = slices.DeleteFunc(s.listeners, func(x host.SessionListener) bool { return x == l })
}

// attach makes out the video output of the session and announces it. The session owns the
// reference passed in. A nil output detaches the current one silently.
func (s *Session) attach(out *OSD) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		if out != nil {
			out.Release()
		}
		return
	}
	old := s.output
	s.output = out
	listeners := slices.Clone(s.listeners)
	if out != nil {
		out.Hold()
	}
	s.mu.Unlock()

	if old != nil {
		old.Release()
	}
	if out == nil {
		return
	}

	for _, l := range listeners {
		l.OnSessionEvent(s, host.Event{Kind: host.EventOutputAttached, Output: out})
	}
	out.Release()
}

// end marks the file as unloaded and drops the output.
func (s *Session) end() {
	s.mu.Lock()
	s.ended = true
	out := s.output
	s.output = nil
	s.mu.Unlock()

	if out != nil {
		out.Release()
	}
}

func (s *Session) alive() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return ErrSessionEnded
	}
	return nil
}

// trackEntry is one element of mpv's track-list property.
type trackEntry struct {
	ID       int64
	Type     string
	Title    string
	Lang     string
	Selected bool
}

func (t trackEntry) choice() host.Choice {
	title := t.Title
	switch {
	case title != "" && t.Lang != "":
		title = fmt.Sprintf("%s [%s]", title, t.Lang)
	case title == "" && t.Lang != "":
		title = t.Lang
	case title == "":
		title = fmt.Sprintf("Track %d", t.ID)
	}
	return host.Choice{ID: t.ID, Title: title}
}

func (s *Session) tracks(class host.Class) ([]trackEntry, error) {
	if err := s.alive(); err != nil {
		return nil, err
	}

	kind, ok := trackTypes[class]
	if !ok {
		return nil, fmt.Errorf("unknown track class %s", class)
	}

	data, err := s.client.Get("track-list")
	if err != nil {
		return nil, err
	}
	list, ok := data.([]interface{})
	if !ok {
		return nil, fmt.Errorf("track-list: expected array, got %T", data)
	}

	var tracks []trackEntry
	for _, item := range list {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		t := trackEntry{
			Type:     stringField(m, "type"),
			Title:    stringField(m, "title"),
			Lang:     stringField(m, "lang"),
			Selected: m["selected"] == true,
		}
		if t.Type != kind.kind {
			continue
		}
		id, ok := m["id"].(float64)
		if !ok {
			continue
		}
		t.ID = int64(id)
		tracks = append(tracks, t)
	}
	return tracks, nil
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
