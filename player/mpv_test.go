package player

import (
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMPV(t *testing.T) {
	Convey("MPV", t, func() {
		mpv := NewMPV("tip-no-such-mpv", filepath.Join(t.TempDir(), "mpv.sock"))

		Convey("Args pass only the socket and the target", func() {
			args := mpv.Args("/movies/a.mkv")
			So(args, ShouldContain, "--input-ipc-server="+mpv.Socket())
			So(args[len(args)-2], ShouldEqual, "--")
			So(args[len(args)-1], ShouldEqual, "/movies/a.mkv")
		})

		Convey("Launch fails for a missing binary", func() {
			err := mpv.Launch("http://example.com/video.mp4")
			So(err, ShouldNotBeNil)
			So(mpv.Close(), ShouldBeNil)
		})

		Convey("Launch rejects flag-like targets before starting anything", func() {
			err := mpv.Launch("--script=evil.lua")
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "invalid media target")
		})
	})
}

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("sanitizeMediaTarget", t, func() {
		Convey("accepts http and https URLs unchanged", func() {
			for _, u := range []string{"http://example.com/a.mp4", "https://example.com/a.mkv?x=1"} {
				got, err := sanitizeMediaTarget(u)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, u)
			}
		})

		Convey("makes local paths absolute", func() {
			got, err := sanitizeMediaTarget("movies/../a.mkv")
			So(err, ShouldBeNil)
			So(filepath.IsAbs(got), ShouldBeTrue)
			So(filepath.Base(got), ShouldEqual, "a.mkv")
		})

		Convey("rejects everything else", func() {
			for _, bad := range []string{"", "  ", "-v", "file://etc/passwd", "a\nb", "ftp://example.com/a"} {
				_, err := sanitizeMediaTarget(bad)
				So(err, ShouldNotBeNil)
			}
		})
	})
}
