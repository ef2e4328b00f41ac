package binding

import (
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/tip-cli/tip/internal/testsupport"
)

func TestBinding(t *testing.T) {
	Convey("Given an empty binding", t, func() {
		var b Binding
		first := testsupport.NewSession("first", 0, 1, 1)
		out := testsupport.NewOutput("vout")

		Convey("The snapshot is empty", func() {
			snap := b.Snapshot()
			So(snap.Session, ShouldBeNil)
			So(snap.Output, ShouldBeNil)
			So(snap.Epoch, ShouldEqual, 0)
			snap.Release()
		})

		Convey("ReplaceSession holds the new session and bumps the epoch", func() {
			old, oldOut, epoch := b.ReplaceSession(first)
			So(old, ShouldBeNil)
			So(oldOut, ShouldBeNil)
			So(epoch, ShouldEqual, 1)
			So(first.Count(), ShouldEqual, 2)

			Convey("ReplaceOutput binds the output of the current session", func() {
				prev, ok := b.ReplaceOutput(first, out)
				So(ok, ShouldBeTrue)
				So(prev, ShouldBeNil)
				So(out.Count(), ShouldEqual, 2)

				Convey("Snapshot holds both and Release gives them back", func() {
					snap := b.Snapshot()
					So(snap.Session, ShouldEqual, first)
					So(snap.Output, ShouldEqual, out)
					So(first.Count(), ShouldEqual, 3)
					So(out.Count(), ShouldEqual, 3)

					snap.Release()
					So(first.Count(), ShouldEqual, 2)
					So(out.Count(), ShouldEqual, 2)
				})

				Convey("Replacing the session hands back both old references and clears the output", func() {
					second := testsupport.NewSession("second", 0, 1, 1)
					old, oldOut, epoch := b.ReplaceSession(second)
					So(old, ShouldEqual, first)
					So(oldOut, ShouldEqual, out)
					So(epoch, ShouldEqual, 2)

					old.Release()
					oldOut.Release()
					So(first.Count(), ShouldEqual, 1)
					So(out.Count(), ShouldEqual, 1)

					snap := b.Snapshot()
					So(snap.Output, ShouldBeNil)
					snap.Release()
				})
			})

			Convey("ReplaceOutput for another session is ignored", func() {
				stranger := testsupport.NewSession("stranger", 0, 1, 1)
				prev, ok := b.ReplaceOutput(stranger, out)
				So(ok, ShouldBeFalse)
				So(prev, ShouldBeNil)
				So(out.Count(), ShouldEqual, 1)
			})
		})

		Convey("Concurrent snapshots and replacements keep the counts balanced", func() {
			sessions := []*testsupport.Session{first, testsupport.NewSession("b", 0, 1, 1)}
			var wg sync.WaitGroup

			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 200; j++ {
						snap := b.Snapshot()
						if snap.Session != nil {
							_, _ = snap.Session.Time()
						}
						snap.Release()
					}
				}()
			}

			for j := 0; j < 200; j++ {
				s := sessions[j%2]
				old, oldOut, _ := b.ReplaceSession(s)
				if prev, ok := b.ReplaceOutput(s, out); ok && prev != nil {
					prev.Release()
				}
				if old != nil {
					old.Release()
				}
				if oldOut != nil {
					oldOut.Release()
				}
				time.Sleep(time.Microsecond)
			}
			wg.Wait()

			old, oldOut, _ := b.ReplaceSession(nil)
			old.Release()
			if oldOut != nil {
				oldOut.Release()
			}

			So(sessions[0].Count(), ShouldEqual, 1)
			So(sessions[1].Count(), ShouldEqual, 1)
			So(out.Count(), ShouldEqual, 1)
			So(b.Epoch(), ShouldEqual, 201)
		})
	})
}
