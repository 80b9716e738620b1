package daemon

import (
	"context"
	"log/slog"

	"github.com/1broseidon/shellwm/internal/wm"
)

// WindowSource is the part of *wm.Manager the change logger needs.
type WindowSource interface {
	Subscribe(fn func(wm.Event)) (unsubscribe func())
	Find(id string) (wm.Window, bool)
}

// ChangeLogger writes one structured record per engine change.
type ChangeLogger struct {
	src    WindowSource
	logger *slog.Logger
	level  slog.LevelVar
	stop   func()
}

// NewChangeLogger subscribes to src. With verbose set, changes are logged
// at info level, otherwise at debug.
func NewChangeLogger(src WindowSource, logger *slog.Logger, verbose bool) *ChangeLogger {
	if logger == nil {
		logger = slog.Default()
	}
	c := &ChangeLogger{
		src:    src,
		logger: logger,
	}
	c.SetVerbose(verbose)
	c.stop = src.Subscribe(c.handle)
	return c
}

func (c *ChangeLogger) handle(ev wm.Event) {
	attrs := []any{"event", string(ev.Kind), "window_id", ev.WindowID}

	// Queries are safe from a subscriber; commands are not.
	if w, ok := c.src.Find(ev.WindowID); ok {
		attrs = append(attrs,
			"state", w.State().String(),
			"z", w.ZIndex,
			"x", w.Position.X,
			"y", w.Position.Y,
			"w", w.Size.Width,
			"h", w.Size.Height)
	}

	c.logger.Log(context.Background(), c.level.Level(), "window changed", attrs...)
}

// SetVerbose switches change records between info and debug level.
func (c *ChangeLogger) SetVerbose(verbose bool) {
	if verbose {
		c.level.Set(slog.LevelInfo)
	} else {
		c.level.Set(slog.LevelDebug)
	}
}

// Close unsubscribes from the engine.
func (c *ChangeLogger) Close() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
}
