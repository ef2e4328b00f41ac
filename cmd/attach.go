package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tip-cli/tip/color"
	"github.com/tip-cli/tip/config"
	"github.com/tip-cli/tip/controller"
	"github.com/tip-cli/tip/filesystem"
	"github.com/tip-cli/tip/host"
	"github.com/tip-cli/tip/icon"
	"github.com/tip-cli/tip/log"
	"github.com/tip-cli/tip/player"
	"github.com/tip-cli/tip/style"
	"github.com/tip-cli/tip/version"
	"github.com/tip-cli/tip/where"
)

// attach runs a controller on the mpv behind socket until interrupted, until mpv goes away
// or until exited is closed. exited may be nil.
func attach(socket string, exited <-chan struct{}) error {
	unlock, err := filesystem.TryLock(where.Lock(socket))
	if errors.Is(err, filesystem.ErrLocked) {
		return fmt.Errorf("another tip is already attached to %s", socket)
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(); err != nil {
			log.Warnf("release lock: %v", err)
		}
	}()

	settings, err := config.LoadSettings()
	if err != nil {
		// the affected settings are disabled; the rest still works
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.Fg(style.WarningColor)("warning:"), err)
	}

	h := player.NewHost(player.NewClient(socket))
	if err := h.Start(); err != nil {
		return fmt.Errorf("connect to mpv on %s: %w", socket, err)
	}
	defer h.Stop()

	if v, err := h.MPVVersion(); err == nil {
		if err := version.CheckMPV(v); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", style.Fg(style.WarningColor)("warning:"), err)
		}
	}

	keys, err := bindKeys(h, settings)
	if err != nil {
		return err
	}

	c, err := controller.Open(controller.Context{
		Host:     h,
		Settings: settings,
		Keys:     keys,
	})
	if err != nil {
		return err
	}
	defer c.Close()

	fmt.Printf(
		"%s attached to %s (%s translate, %s repeat)\n",
		style.Fg(style.SuccessColor)(icon.Get(icon.Success)),
		style.Fg(color.Purple)(socket),
		style.Fg(color.Yellow)(settings.TranslateKey),
		style.Fg(color.Yellow)(settings.RepeatKey),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		log.Info("interrupted")
	case <-h.Done():
		log.Info("mpv closed the connection")
	case <-exited:
		log.Info("mpv exited")
	}
	return nil
}

// bindKeys binds the configured hotkeys. An empty key name leaves its action unbound.
func bindKeys(h *player.Host, settings config.Settings) (keys controller.Keys, err error) {
	bind := func(name string) (host.KeyCode, error) {
		if name == "" {
			return 0, nil
		}
		return h.BindKey(name)
	}

	if keys.Translate, err = bind(settings.TranslateKey); err != nil {
		return controller.Keys{}, err
	}
	if keys.Repeat, err = bind(settings.RepeatKey); err != nil {
		return controller.Keys{}, err
	}
	return keys, nil
}
