package timer

import (
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTimer(t *testing.T) {
	Convey("Given a timer counting its fires", t, func() {
		var fires atomic.Int32
		tm := New(func() { fires.Add(1) })
		Reset(tm.Stop)

		Convey("A one-shot schedule fires exactly once", func() {
			tm.Schedule(10*time.Millisecond, 0)
			So(eventually(func() bool { return fires.Load() == 1 }), ShouldBeTrue)
			time.Sleep(100 * time.Millisecond)
			So(fires.Load(), ShouldEqual, 1)
		})

		Convey("Rescheduling before the fire yields a single fire at the new delay", func() {
			tm.Schedule(time.Hour, 0)
			tm.Schedule(10*time.Millisecond, 0)
			So(eventually(func() bool { return fires.Load() == 1 }), ShouldBeTrue)

			tm.Schedule(10*time.Millisecond, 0)
			tm.Schedule(time.Hour, 0)
			time.Sleep(200 * time.Millisecond)
			So(fires.Load(), ShouldEqual, 1)
		})

		Convey("Cancel drops the pending fire", func() {
			tm.Schedule(20*time.Millisecond, 0)
			tm.Cancel()
			time.Sleep(200 * time.Millisecond)
			So(fires.Load(), ShouldEqual, 0)
		})

		Convey("A periodic schedule keeps firing until cancelled", func() {
			tm.Schedule(5*time.Millisecond, 10*time.Millisecond)
			So(eventually(func() bool { return fires.Load() >= 2 }), ShouldBeTrue)
			tm.Cancel()

			// a callback past its generation check may still be finishing
			time.Sleep(50 * time.Millisecond)
			n := fires.Load()
			time.Sleep(200 * time.Millisecond)
			So(fires.Load(), ShouldEqual, n)
		})

		Convey("A stopped timer ignores new schedules", func() {
			tm.Stop()
			tm.Schedule(5*time.Millisecond, 0)
			time.Sleep(200 * time.Millisecond)
			So(fires.Load(), ShouldEqual, 0)
		})

		Convey("A superseded generation is dropped even if its fire was already queued", func() {
			tm.Schedule(time.Hour, 0)
			stale := tm.gen
			tm.Schedule(time.Hour, 0)
			tm.fire(stale, 0)
			So(fires.Load(), ShouldEqual, 0)

			tm.fire(tm.gen, 0)
			So(fires.Load(), ShouldEqual, 1)
		})
	})
}

// eventually polls cond until it holds or a generous deadline passes.
func eventually(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
