package filesystem

import (
	"errors"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestApi(t *testing.T) {
	Convey("Filesystem API", t, func() {
		Convey("Should default to OsFs", func() {
			SetOsFs()
			fs := API()
			So(fs, ShouldNotBeNil)
			So(fs.Name(), ShouldEqual, "OsFs")
		})

		Convey("Should switch to MemMapFs", func() {
			SetMemMapFs()
			fs := API()
			So(fs, ShouldNotBeNil)
			So(fs.Name(), ShouldEqual, "MemMapFS")
		})
	})
}

func TestTryLock(t *testing.T) {
	Convey("TryLock", t, func() {
		Convey("In memory", func() {
			SetMemMapFs()
			path := "/locks/a.lock"

			unlock, err := TryLock(path)
			So(err, ShouldBeNil)

			_, err = TryLock(path)
			So(errors.Is(err, ErrLocked), ShouldBeTrue)

			So(unlock(), ShouldBeNil)

			unlock, err = TryLock(path)
			So(err, ShouldBeNil)
			So(unlock(), ShouldBeNil)
		})

		Convey("On the OS backend", func() {
			SetOsFs()
			defer SetMemMapFs()
			path := filepath.Join(t.TempDir(), "b.lock")

			unlock, err := TryLock(path)
			So(err, ShouldBeNil)

			_, err = TryLock(path)
			So(errors.Is(err, ErrLocked), ShouldBeTrue)

			So(unlock(), ShouldBeNil)
		})
	})
}
