package player

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/tip-cli/tip/constant"
	"github.com/tip-cli/tip/host"
	"github.com/tip-cli/tip/log"
	"golang.org/x/exp/slices"
)

// Host exposes a running mpv as a playback host: its loaded file is the current session,
// bound keys arrive as script messages and the video output carries the OSD.
//
// Listeners are called from the event goroutine, one event at a time.
type Host struct {
	client *Client
	events *EventListener

	mu           sync.Mutex
	current      *Session
	voConfigured bool
	keys         []host.KeyListener
	playlists    []host.PlaylistListener
	bound        map[string]host.KeyCode
	lastCode     host.KeyCode
}

var _ host.Host = (*Host)(nil)

// NewHost returns a host for the mpv listening on client's socket. Call Start to connect.
func NewHost(client *Client) *Host {
	h := &Host{
		client: client,
		bound:  make(map[string]host.KeyCode),
	}
	h.events = NewEventListener(client.Socket(), h.handle)
	return h
}

// Start subscribes to mpv's events and picks up the file that is already playing, if any.
func (h *Host) Start() error {
	if err := h.events.Start(); err != nil {
		return err
	}

	path, err := h.client.Get("path")
	switch {
	case errors.Is(err, ErrPropertyUnavailable):
		return nil
	case err != nil:
		h.events.Stop()
		return err
	}

	s := newSession(h.client, fmt.Sprint(path))
	h.mu.Lock()
	if h.current != nil {
		// file-loaded won the race
		h.mu.Unlock()
		s.Release()
		return nil
	}
	h.current = s
	h.mu.Unlock()

	if vo, err := h.client.GetBool("vo-configured"); err == nil && vo {
		h.setVO(true)
	}
	return nil
}

// Stop disconnects from mpv and ends the current session.
func (h *Host) Stop() {
	h.events.Stop()

	h.mu.Lock()
	s := h.current
	h.current = nil
	h.mu.Unlock()

	if s != nil {
		s.end()
		s.Release()
	}
}

// MPVVersion returns mpv's version string, e.g. "mpv 0.38.0".
func (h *Host) MPVVersion() (string, error) {
	v, err := h.client.Get("mpv-version")
	if err != nil {
		return "", err
	}
	return fmt.Sprint(v), nil
}

// Done is closed once the event connection is gone.
func (h *Host) Done() <-chan struct{} {
	return h.events.Done()
}

// BindKey binds the mpv key name (e.g. "Ctrl+t") to a script message carrying a fresh key code
// and returns that code. Binding the same name twice returns the same code.
func (h *Host) BindKey(name string) (host.KeyCode, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, " \t\n\"") {
		return 0, fmt.Errorf("invalid key name %q", name)
	}

	h.mu.Lock()
	code, ok := h.bound[name]
	if !ok {
		h.lastCode++
		code = h.lastCode
		h.bound[name] = code
	}
	h.mu.Unlock()

	if ok {
		return code, nil
	}

	action := fmt.Sprintf("script-message %s %d", constant.KeyMessage, code)
	if _, err := h.client.Command("keybind", name, action); err != nil {
		h.mu.Lock()
		delete(h.bound, name)
		h.mu.Unlock()
		return 0, fmt.Errorf("bind %s: %w", name, err)
	}

	log.Infof("bound %s to key code %d", name, code)
	return code, nil
}

func (h *Host) AddKeyListener(l host.KeyListener) error {
	h.mu.Lock()
	defer h.mu.Unlock()
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
	if h.current == nil {
		return nil
	}
	h.current.Hold()
	return h.current
}

func (h *Host) handle(ev Event) {
	switch ev.Name {
	case "client-message":
		h.onMessage(ev.Args)
	case "file-loaded":
		h.onFileLoaded()
	case "end-file", "idle":
		h.onFileEnded(ev.Reason)
	case "property-change":
		if ev.Property == "vo-configured" {
			vo, _ := ev.Data.(bool)
			h.setVO(vo)
		}
	}
}

func (h *Host) onMessage(args []string) {
	if len(args) != 2 || args[0] != constant.KeyMessage {
		return
	}

	code, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		log.Warnf("malformed key message %q", args[1])
		return
	}

	h.mu.Lock()
	keys := slices.Clone(h.keys)
	h.mu.Unlock()

	for _, l := range keys {
		l.OnKey(host.KeyCode(code))
	}
}

func (h *Host) onFileLoaded() {
	path := ""
	if p, err := h.client.Get("path"); err == nil {
		path = fmt.Sprint(p)
	}
	s := newSession(h.client, path)

	h.mu.Lock()
	old := h.current
	h.current = s
	vo := h.voConfigured
	h.mu.Unlock()

	if old != nil {
		old.end()
		old.Release()
	}

	log.Infof("file loaded: %s", path)
	h.notifyPlaylist(s)

	if vo {
		s.attach(newOSD(h.client))
	}
}

func (h *Host) onFileEnded(reason string) {
	h.mu.Lock()
	old := h.current
	h.current = nil
	h.mu.Unlock()

	if old == nil {
		return
	}
	old.end()
	old.Release()

	log.Infof("file ended: %s", reason)
	h.notifyPlaylist(nil)
}

func (h *Host) setVO(configured bool) {
	h.mu.Lock()
	h.voConfigured = configured
	s := h.current
	if s != nil {
		s.Hold()
	}
	h.mu.Unlock()

	if s == nil {
		return
	}
	defer s.Release()

	if configured {
		s.attach(newOSD(h.client))
	} else {
		s.attach(nil)
	}
}

// notifyPlaylist passes s borrowed; listeners hold it to keep it.
func (h *Host) notifyPlaylist(s *Session) {
	h.mu.Lock()
	playlists := slices.Clone(h.playlists)
	h.mu.Unlock()

	var current host.Session
	if s != nil {
		current = s
	}
	for _, l := range playlists {
		l.OnCurrentChanged(current)
	}
}
