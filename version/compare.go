// Package version compares release versions and checks the mpv we attach to.
package version

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
)

// semver finds the first x.y.z in a version string such as "mpv v0.37.0-dirty".
var semver = regexp.MustCompile(`v?(\d+)\.(\d+)(?:\.(\d+))?`)

type version struct {
	major, minor, patch int
}

func parse(s string) (version, error) {
	m := semver.FindStringSubmatch(s)
	if m == nil {
		return version{}, fmt.Errorf("no version in %q", s)
	}

	var v version
	if m[3] == "" {
		m[3] = "0"
	}
	_, err := fmt.Sscanf(strings.Join(m[1:], " "), "%d %d %d", &v.major, &v.minor, &v.patch)
	return v, err
}

// Compare performs a semantic comparison between two version strings.
// Returns 1 if a > b, -1 if a < b, and 0 if equal. Text around the version number is ignored.
func Compare(a, b string) (int, error) {
	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	for _, pair := range []lo.Tuple2[int, int]{
		{A: av.major, B: bv.major},
		{A: av.minor, B: bv.minor},
		{A: av.patch, B: bv.patch},
	} {
		if pair.A > pair.B {
			return 1, nil
		}

		if pair.A < pair.B {
			return -1, nil
		}
	}

	return 0, nil
}
