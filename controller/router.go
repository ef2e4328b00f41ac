package controller

import (
	"github.com/tip-cli/tip/host"
)

// router turns host callbacks into binding updates and machine transitions.
type router struct {
	c *Controller
}

func (r *router) OnKey(code host.KeyCode) {
	c := r.c
	if !c.enabled || code == 0 {
		return
	}

	switch code {
	case c.keys.Translate:
		snap := c.binding.Snapshot()
		defer snap.Release()
		c.machine.Translate(snap)
	case c.keys.Repeat:
		snap := c.binding.Snapshot()
		defer snap.Release()
		c.machine.Repeat(snap)
	}
}

func (r *router) OnCurrentChanged(s host.Session) {
	r.c.rebindMu.Lock()
	defer r.c.rebindMu.Unlock()
	r.rebind(s)
}

func (r *router) OnSessionEvent(s host.Session, ev host.Event) {
	if ev.Kind != host.EventOutputAttached {
		return
	}

	old, ok := r.c.binding.ReplaceOutput(s, ev.Output)
	if !ok {
		r.c.log.Debug("output attached to a session that is no longer current")
		return
	}
	if old != nil {
		old.Release()
	}
	r.c.log.Debug("output attached")
}

func (r *router) onTimer() {
	snap := r.c.binding.Snapshot()
	defer snap.Release()
	r.c.machine.Expire(snap)
}

// rebind makes s the bound session. Callers hold rebindMu.
func (r *router) rebind(s host.Session) {
	c := r.c

	old, oldOutput, epoch := c.binding.ReplaceSession(s)
	if old != nil {
		old.RemoveListener(r)
	}
	c.machine.Reset(epoch)

	if s != nil {
		if err := s.AddListener(r); err != nil {
			c.log.WithError(err).Warn("session events unavailable, on-screen text disabled")
		}
	}

	if old != nil {
		old.Release()
	}
	if oldOutput != nil {
		oldOutput.Release()
	}
	c.log.WithField("epoch", epoch).Debug("session rebound")
}
