package viewport

import "github.com/1broseidon/shellwm/internal/config"

// New builds the source described by cfg. The returned close func
// releases any display connection and is safe to call more than once.
func New(cfg config.ViewportConfig) (Source, func()) {
	switch cfg.Source {
	case config.ViewportX11:
		x := &X11{Display: cfg.Display, Monitor: cfg.Monitor, UseWorkArea: cfg.UseWorkArea}
		if cfg.Width > 0 && cfg.Height > 0 {
			return Fallback(x, NewStatic(cfg.Width, cfg.Height)), x.Close
		}
		return x, x.Close
	default:
		return NewStatic(cfg.Width, cfg.Height), func() {}
	}
}
