package host

import (
	"sync/atomic"

	"github.com/tip-cli/tip/log"
)

// Ref is a share counter for host objects. The zero value is unusable; use NewRef.
type Ref struct {
	name   string
	count  atomic.Int64
	onZero func()
}

// NewRef returns a counter holding one reference. onZero runs once when the last reference is released.
func NewRef(name string, onZero func()) *Ref {
	r := &Ref{name: name, onZero: onZero}
	r.count.Store(1)
	return r
}

// Hold acquires a reference.
func (r *Ref) Hold() {
	if r.count.Add(1) <= 1 {
		log.Errorf("%s: hold after final release", r.name)
	}
}

// Release drops a reference and runs the release hook on the last one.
func (r *Ref) Release() {
	switch n := r.count.Add(-1); {
	case n == 0:
		if r.onZero != nil {
			r.onZero()
		}
	case n < 0:
		log.Errorf("%s: released %d times too often", r.name, -n)
	}
}

// Count returns the number of outstanding references.
func (r *Ref) Count() int64 {
	return r.count.Load()
}
