// Package notifier sends desktop notifications for watch-mode compiles.
package notifier

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/poltergeist/buildscript/pkg/logger"
)

// SendFunc delivers one notification.
type SendFunc func(title, message string) error

// CompileNotifier reports watch-mode compile results
type CompileNotifier struct {
	enabled   bool
	onSuccess bool
	beep      bool
	send      SendFunc
	logger    logger.Logger
}

// Config represents notification configuration
type Config struct {
	Enabled bool
	// OnSuccess also notifies successful compiles; failures always notify.
	OnSuccess bool
	// Beep plays the system beep on failure.
	Beep bool
}

// New creates a notifier that uses the desktop notification service.
func New(config Config, log logger.Logger) *CompileNotifier {
	return NewWithSender(config, log, func(title, message string) error {
		return beeep.Notify(title, message, "")
	})
}

// NewWithSender creates a notifier delivering through send.
func NewWithSender(config Config, log logger.Logger, send SendFunc) *CompileNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &CompileNotifier{
		enabled:   config.Enabled,
		onSuccess: config.OnSuccess,
		beep:      config.Beep,
		send:      send,
		logger:    log,
	}
}

// NotifyCompileSuccess reports that path compiled into jobs scripts.
func (n *CompileNotifier) NotifyCompileSuccess(path string, jobs int, duration time.Duration) {
	if !n.enabled || !n.onSuccess {
		return
	}
	message := fmt.Sprintf("%s: %d script(s) in %s", filepath.Base(path), jobs, formatDuration(duration))
	n.notify("Build script compiled", message)
}

// NotifyCompileFailure reports that path failed to compile.
func (n *CompileNotifier) NotifyCompileFailure(path string, err error) {
	if !n.enabled {
		return
	}
	n.notify("Build script failed", fmt.Sprintf("%s: %v", filepath.Base(path), err))

	if n.beep {
		if err := beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration); err != nil {
			n.logger.Debug("Failed to play sound", logger.WithField("error", err))
		}
	}
}

func (n *CompileNotifier) notify(title, message string) {
	if err := n.send(title, message); err != nil {
		n.logger.Debug("Failed to send notification", logger.WithField("error", err))
		n.logger.Info(fmt.Sprintf("%s: %s", title, message))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
