package player

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tip-cli/tip/host"
)

type recorder struct {
	keys     chan host.KeyCode
	sessions chan host.Session
	events   chan host.Event
}

func newRecorder() *recorder {
	return &recorder{
		keys:     make(chan host.KeyCode, 16),
		sessions: make(chan host.Session, 16),
		events:   make(chan host.Event, 16),
	}
}

func (r *recorder) OnKey(code host.KeyCode)          { r.keys <- code }
func (r *recorder) OnCurrentChanged(s host.Session) { r.sessions <- s }
func (r *recorder) OnSessionEvent(_ host.Session, ev host.Event) {
	r.events <- ev
}

var trackList = []interface{}{
	map[string]interface{}{"id": 1, "type": "video", "selected": true},
	map[string]interface{}{"id": 1, "type": "audio", "title": "Stereo", "lang": "eng", "selected": true},
	map[string]interface{}{"id": 2, "type": "audio", "lang": "fra"},
	map[string]interface{}{"id": 1, "type": "sub", "title": "Full"},
	map[string]interface{}{"id": 2, "type": "sub"},
}

func TestClient(t *testing.T) {
	Convey("Given a client of a running mpv", t, func() {
		f := newFakeMPV(t)
		c := NewClient(f.socket)

		Convey("Get skips broadcast events and returns the property", func() {
			f.set("pause", true)
			v, err := c.GetBool("pause")
			So(err, ShouldBeNil)
			So(v, ShouldBeTrue)
		})

		Convey("A missing property is reported as unavailable", func() {
			_, err := c.Get("time-pos")
			So(errors.Is(err, ErrPropertyUnavailable), ShouldBeTrue)
		})

		Convey("Errors reported by mpv are typed and not retried", func() {
			_, err := c.Command("bogus")
			var cmdErr *CommandError
			So(errors.As(err, &cmdErr), ShouldBeTrue)
			So(cmdErr.Reason, ShouldEqual, "invalid parameter")
			So(len(f.received("bogus")), ShouldEqual, 1)
		})

		Convey("A wrongly typed property is an error", func() {
			f.set("seekable", "yes")
			_, err := c.GetBool("seekable")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("A client of a missing socket fails after retrying", t, func() {
		_, err := NewClient("/nonexistent/tip.sock").Command("get_property", "pid")
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "3 attempts")
	})
}

func TestSession(t *testing.T) {
	Convey("Given a session on a file with two audio and two subtitle tracks", t, func() {
		f := newFakeMPV(t)
		f.set("track-list", trackList)
		f.set("time-pos", 12.5)
		f.set("seekable", true)
		s := newSession(NewClient(f.socket), "/movies/a.mkv")

		Convey("Choices start with Disabled and keep mpv's track ids", func() {
			audio, err := s.Choices(host.Audio)
			So(err, ShouldBeNil)
			So(audio, ShouldResemble, []host.Choice{
				{ID: host.Disabled, Title: "Disable"},
				{ID: 1, Title: "Stereo [eng]"},
				{ID: 2, Title: "fra"},
			})

			subs, err := s.Choices(host.Subtitle)
			So(err, ShouldBeNil)
			So(subs, ShouldHaveLength, 3)
			So(subs[2], ShouldResemble, host.Choice{ID: 2, Title: "Track 2"})
		})

		Convey("Track reports the selected track or Disabled", func() {
			a, err := s.Track(host.Audio)
			So(err, ShouldBeNil)
			So(a, ShouldResemble, host.Choice{ID: 1, Title: "Stereo [eng]"})

			sub, err := s.Track(host.Subtitle)
			So(err, ShouldBeNil)
			So(sub.IsDisabled(), ShouldBeTrue)
		})

		Convey("SetTrack writes aid and sid", func() {
			So(s.SetTrack(host.Audio, host.Choice{ID: 2}), ShouldBeNil)
			So(f.get("aid"), ShouldEqual, float64(2))

			So(s.SetTrack(host.Subtitle, host.Choice{ID: host.Disabled}), ShouldBeNil)
			So(f.get("sid"), ShouldEqual, "no")
		})

		Convey("Time and SetTime use seconds, clamping before the start", func() {
			pos, err := s.Time()
			So(err, ShouldBeNil)
			So(pos, ShouldEqual, 12500*time.Millisecond)

			So(s.SetTime(-3*time.Second), ShouldBeNil)
			seeks := f.received("seek")
			So(seeks, ShouldHaveLength, 1)
			So(seeks[0][1], ShouldEqual, float64(0))
			So(seeks[0][2], ShouldEqual, "absolute+exact")

			So(s.CanSeek(), ShouldBeTrue)
		})

		Convey("An ended session refuses every call", func() {
			s.end()
			_, err := s.Time()
			So(errors.Is(err, ErrSessionEnded), ShouldBeTrue)
			So(errors.Is(s.SetTime(0), ErrSessionEnded), ShouldBeTrue)
			So(errors.Is(s.AddListener(newRecorder()), ErrSessionEnded), ShouldBeTrue)
			So(s.CanSeek(), ShouldBeFalse)
		})

		Convey("A listener added after the output is attached learns about it", func() {
			osd := newOSD(NewClient(f.socket))
			s.attach(osd)

			r := newRecorder()
			So(s.AddListener(r), ShouldBeNil)
			ev, ok := receive(r.events)
			So(ok, ShouldBeTrue)
			So(ev.Kind, ShouldEqual, host.EventOutputAttached)
			So(ev.Output, ShouldEqual, osd)

			s.end()
			So(osd.Count(), ShouldEqual, 0)
		})
	})
}

func TestOSD(t *testing.T) {
	Convey("Display sends show-text with an alignment tag", t, func() {
		f := newFakeMPV(t)
		osd := newOSD(NewClient(f.socket))

		So(osd.Display(host.TopRight, 5*time.Second, "repeat {x}"), ShouldBeNil)
		shown := f.received("show-text")
		So(shown, ShouldHaveLength, 1)
		So(shown[0][1], ShouldEqual, `${osd-ass-cc/0}{\an9}repeat \{x\}`)
		So(shown[0][2], ShouldEqual, float64(5000))

		So(osd.Display(host.Region(0), time.Second, "x"), ShouldNotBeNil)
	})
}

func TestHost(t *testing.T) {
	Convey("Given a host attached to an idle mpv", t, func() {
		f := newFakeMPV(t)
		h := NewHost(NewClient(f.socket))
		So(h.Start(), ShouldBeNil)
		Reset(h.Stop)

		So(h.Current(), ShouldBeNil)
		So(f.received("observe_property"), ShouldHaveLength, 1)

		r := newRecorder()
		So(h.AddKeyListener(r), ShouldBeNil)
		So(h.AddPlaylistListener(r), ShouldBeNil)

		Convey("BindKey binds a script message and reuses codes", func() {
			code, err := h.BindKey("Ctrl+t")
			So(err, ShouldBeNil)
			So(code, ShouldEqual, host.KeyCode(1))

			again, err := h.BindKey("Ctrl+t")
			So(err, ShouldBeNil)
			So(again, ShouldEqual, code)

			binds := f.received("keybind")
			So(binds, ShouldHaveLength, 1)
			So(binds[0][1], ShouldEqual, "Ctrl+t")
			So(binds[0][2], ShouldEqual, "script-message tip-key 1")

			_, err = h.BindKey("two keys")
			So(err, ShouldNotBeNil)
		})

		Convey("Key messages reach key listeners", func() {
			f.broadcast(map[string]interface{}{"event": "client-message", "args": []string{"other", "1"}})
			f.broadcast(map[string]interface{}{"event": "client-message", "args": []string{"tip-key", "7"}})
			code, ok := receive(r.keys)
			So(ok, ShouldBeTrue)
			So(code, ShouldEqual, host.KeyCode(7))
		})

		Convey("A loaded file becomes the current session", func() {
			f.set("path", "/movies/a.mkv")
			f.broadcast(map[string]interface{}{"event": "file-loaded"})

			got, ok := receive(r.sessions)
			So(ok, ShouldBeTrue)
			So(got, ShouldNotBeNil)
			s := got.(*Session)
			So(s.Path(), ShouldEqual, "/movies/a.mkv")

			current := h.Current()
			So(current, ShouldEqual, s)
			current.Release()

			Convey("A configured video output is announced with an OSD", func() {
				events := newRecorder()
				So(s.AddListener(events), ShouldBeNil)
				f.broadcast(map[string]interface{}{"event": "property-change", "name": "vo-configured", "data": true})

				ev, ok := receive(events.events)
				So(ok, ShouldBeTrue)
				So(ev.Kind, ShouldEqual, host.EventOutputAttached)
				_, isOSD := ev.Output.(*OSD)
				So(isOSD, ShouldBeTrue)
			})

			Convey("The end of the file ends the session", func() {
				s.Hold()
				defer s.Release()

				f.broadcast(map[string]interface{}{"event": "end-file", "reason": "eof"})
				got, ok := receive(r.sessions)
				So(ok, ShouldBeTrue)
				So(got, ShouldBeNil)
				So(h.Current(), ShouldBeNil)

				_, err := s.Time()
				So(errors.Is(err, ErrSessionEnded), ShouldBeTrue)
			})
		})
	})

	Convey("Given an mpv already playing with a video output", t, func() {
		f := newFakeMPV(t)
		f.set("path", "/movies/b.mkv")
		f.set("vo-configured", true)

		h := NewHost(NewClient(f.socket))
		So(h.Start(), ShouldBeNil)
		Reset(h.Stop)

		Convey("Start picks up the session and its output", func() {
			current := h.Current()
			So(current, ShouldNotBeNil)
			defer current.Release()

			r := newRecorder()
			So(current.AddListener(r), ShouldBeNil)
			ev, ok := receive(r.events)
			So(ok, ShouldBeTrue)
			So(ev.Kind, ShouldEqual, host.EventOutputAttached)
		})
	})
}
