// Package controller attaches the translate workflow to a playback host.
//
// Open subscribes to the host's key and playlist streams and to the events of the current
// session; Close undoes all of it. Host callbacks may arrive concurrently from any goroutine.
package controller

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tip-cli/tip/binding"
	"github.com/tip-cli/tip/config"
	"github.com/tip-cli/tip/host"
	"github.com/tip-cli/tip/log"
	"github.com/tip-cli/tip/timer"
	"github.com/tip-cli/tip/translate"
)

// ErrInit reports that the controller could not be set up. Nothing stays registered with the host.
var ErrInit = errors.New("controller init failed")

// Scheduler is the auto-revert timer handed to the controller.
type Scheduler interface {
	translate.Scheduler
	// Stop cancels the timer for good.
	Stop()
}

// Keys are the host key codes bound to the two hotkeys. A zero code is never matched.
type Keys struct {
	Translate host.KeyCode
	Repeat    host.KeyCode
}

// Context is everything Open needs from its caller.
type Context struct {
	Host     host.Host
	Settings config.Settings
	Keys     Keys
	// NewTimer creates the auto-revert timer. Nil means timer.New.
	NewTimer func(fn func()) (Scheduler, error)
}

// Controller is one attached instance of the translate workflow.
type Controller struct {
	id      string
	host    host.Host
	keys    Keys
	enabled bool
	log     *logrus.Entry

	binding binding.Binding
	machine *translate.Machine
	timer   Scheduler
	router  *router

	// rebindMu orders session replacements with their listener changes.
	// Lock order: rebindMu, then the machine; the binding lock is a leaf.
	rebindMu sync.Mutex
	closed   sync.Once
}

// Open attaches a controller to ctx.Host. The current session, if any, is bound immediately.
func Open(ctx Context) (*Controller, error) {
	if ctx.Host == nil {
		return nil, fmt.Errorf("%w: no host", ErrInit)
	}

	newTimer := ctx.NewTimer
	if newTimer == nil {
		newTimer = func(fn func()) (Scheduler, error) { return timer.New(fn), nil }
	}

	c := &Controller{
		id:      uuid.NewString(),
		host:    ctx.Host,
		keys:    ctx.Keys,
		enabled: ctx.Settings.WindowSeconds >= 0,
	}
	c.log = log.WithFields(logrus.Fields{"controller": c.id})
	c.router = &router{c: c}

	t, err := newTimer(c.router.onTimer)
	if err != nil {
		return nil, fmt.Errorf("%w: create timer: %w", ErrInit, err)
	}
	c.timer = t
	c.machine = translate.New(configFor(ctx.Settings), t, c.log)

	if err := c.host.AddPlaylistListener(c.router); err != nil {
		t.Stop()
		return nil, fmt.Errorf("%w: playlist events: %w", ErrInit, err)
	}
	if err := c.host.AddKeyListener(c.router); err != nil {
		c.host.RemovePlaylistListener(c.router)
		t.Stop()
		return nil, fmt.Errorf("%w: key events: %w", ErrInit, err)
	}

	if s := c.host.Current(); s != nil {
		c.rebindMu.Lock()
		// A playlist event that raced the subscription already bound a newer session.
		if c.binding.Epoch() == 0 {
			c.router.rebind(s)
		}
		c.rebindMu.Unlock()
		s.Release()
	}

	if !c.enabled {
		c.log.Warnf("window is %ds, hotkeys are disabled", ctx.Settings.WindowSeconds)
	}
	c.log.Infof(
		"TIP is loaded with window=%ds translate.audio=%d translate.subtitle=%d repeat.subtitle=%d",
		ctx.Settings.WindowSeconds,
		ctx.Settings.TranslateAudio,
		ctx.Settings.TranslateSubtitle,
		ctx.Settings.RepeatSubtitle,
	)
	return c, nil
}

// Close detaches the controller from the host and releases every reference it holds.
// It is safe to call more than once.
func (c *Controller) Close() {
	c.closed.Do(func() {
		c.host.RemoveKeyListener(c.router)
		c.host.RemovePlaylistListener(c.router)
		c.timer.Stop()

		c.rebindMu.Lock()
		c.router.rebind(nil)
		c.rebindMu.Unlock()

		c.machine.Close()
		c.log.Info("TIP is unloaded")
	})
}

// ID returns the instance identifier used in log entries.
func (c *Controller) ID() string {
	return c.id
}

// State returns the phase of the workflow.
func (c *Controller) State() translate.State {
	return c.machine.State()
}

func configFor(s config.Settings) translate.Config {
	return translate.Config{
		Window:            time.Duration(s.WindowSeconds) * time.Second,
		TranslateAudio:    s.TranslateAudio,
		TranslateSubtitle: s.TranslateSubtitle,
		RepeatSubtitle:    s.RepeatSubtitle,
		Region:            host.Region(s.OSDPosition),
	}
}
