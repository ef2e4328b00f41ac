// Package binding tracks the playback session the controller currently acts on, and its video output.
package binding

import (
	"sync"

	"github.com/tip-cli/tip/host"
)

// Binding holds the current session and output. The zero value is an empty binding.
//
// The lock is a leaf: no method calls into a session or output while holding it. Replace methods
// hand the previous references to the caller, who releases them after the lock is gone.
type Binding struct {
	mu      sync.Mutex
	session host.Session
	output  host.Output
	epoch   uint64
}

// Snapshot is a consistent, held view of a Binding.
type Snapshot struct {
	Session host.Session
	Output  host.Output
	// Epoch identifies the bound session; it grows by one on every ReplaceSession.
	Epoch uint64
}

// Release drops the references held by the snapshot. It must be called exactly once.
func (s Snapshot) Release() {
	if s.Session != nil {
		s.Session.Release()
	}
	if s.Output != nil {
		s.Output.Release()
	}
}

// ReplaceSession binds s (holding it when not nil) and clears the output.
// Ownership of the previous session and output passes to the caller.
func (b *Binding) ReplaceSession(s host.Session) (old host.Session, oldOutput host.Output, epoch uint64) {
	if s != nil {
		s.Hold()
	}

	b.mu.Lock()
	old, oldOutput = b.session, b.output
	b.session, b.output = s, nil
	b.epoch++
	epoch = b.epoch
	b.mu.Unlock()

	return old, oldOutput, epoch
}

// ReplaceOutput binds out as the output of session of. It does nothing and reports false when of is
// no longer the bound session. On success the caller owns the previous output.
func (b *Binding) ReplaceOutput(of host.Session, out host.Output) (old host.Output, ok bool) {
	if out != nil {
		out.Hold()
	}

	b.mu.Lock()
	if of == nil || b.session != of {
		b.mu.Unlock()
		if out != nil {
			out.Release()
		}
		return nil, false
	}
	old = b.output
	b.output = out
	b.mu.Unlock()

	return old, true
}

// Snapshot returns held references to the current session and output, taken under one lock.
func (b *Binding) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := Snapshot{Session: b.session, Output: b.output, Epoch: b.epoch}
	if snap.Session != nil {
		snap.Session.Hold()
	}
	if snap.Output != nil {
		snap.Output.Hold()
	}
	return snap
}

// Epoch returns the current session epoch.
func (b *Binding) Epoch() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.epoch
}
