package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/manav03panchal/remindly/internal/config"
	"github.com/manav03panchal/remindly/internal/model"
)

// NotifySend delivers through the freedesktop notify-send binary, which
// honours the app name and timeout.
type NotifySend struct {
	Path string
	// run executes the command; tests replace it.
	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewNotifySend returns a NotifySend for the binary found on PATH.
func NewNotifySend() (*NotifySend, error) {
	path, err := exec.LookPath("notify-send")
	if err != nil {
		return nil, err
	}
	return &NotifySend{Path: path, run: runCommand}, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Name implements Notifier.
func (n *NotifySend) Name() string { return config.BackendNotifySend }

// Deliver implements Notifier.
func (n *NotifySend) Deliver(ctx context.Context, note *model.Notification) error {
	out, err := n.run(ctx, n.Path, notifySendArgs(note)...)
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("notify-send: %s: %w", msg, err)
		}
		return fmt.Errorf("notify-send: %w", err)
	}
	return nil
}

func notifySendArgs(note *model.Notification) []string {
	args := []string{"-a", note.AppName}
	if note.Timeout > 0 {
		args = append(args, "-t", strconv.FormatInt(note.Timeout.Milliseconds(), 10))
	}
	// "--" keeps messages starting with a dash from being read as flags.
	return append(args, "--", note.Title, note.Message)
}

// Beeep delivers through gen2brain/beeep. It has no timeout control; the
// platform default applies.
type Beeep struct{}

// Name implements Notifier.
func (Beeep) Name() string { return config.BackendBeeep }

// Deliver implements Notifier.
func (Beeep) Deliver(_ context.Context, note *model.Notification) error {
	if err := beeep.Notify(note.Title, note.Message, ""); err != nil {
		return fmt.Errorf("beeep: %w", err)
	}
	return nil
}

// None drops every notification. It is used when notifications are
// disabled and in tests.
type None struct{}

// Name implements Notifier.
func (None) Name() string { return config.BackendNone }

// Deliver implements Notifier.
func (None) Deliver(context.Context, *model.Notification) error { return nil }

// NewDesktop picks a Notifier for backend. "auto" prefers notify-send on
// Linux and falls back to beeep.
func NewDesktop(backend string) (Notifier, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", config.BackendAuto:
		if runtime.GOOS == "linux" {
			if ns, err := NewNotifySend(); err == nil {
				return ns, nil
			}
		}
		return Beeep{}, nil
	case config.BackendNotifySend:
		ns, err := NewNotifySend()
		if err != nil {
			return nil, fmt.Errorf("notify-send not available: %w", err)
		}
		return ns, nil
	case config.BackendBeeep:
		return Beeep{}, nil
	case config.BackendNone:
		return None{}, nil
	default:
		return nil, fmt.Errorf("unknown notification backend %q (use auto, notify-send, beeep or none)", backend)
	}
}
