package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/shellwm/internal/config"
	"github.com/1broseidon/shellwm/internal/daemon"
	"github.com/1broseidon/shellwm/internal/ipc"
	"github.com/1broseidon/shellwm/internal/viewport"
	"github.com/1broseidon/shellwm/internal/wm"
)

// daemonState holds the pieces a config reload reconfigures.
type daemonState struct {
	cfg         *config.Config
	manager     *wm.Manager
	vp          *viewport.Switch
	closeVP     func()
	logLevel    *slog.LevelVar
	changes     *daemon.ChangeLogger
	watcher     *daemon.ConfigWatcher
	ipcServer   *ipc.Server
	configFiles []string
}

// apply switches the running daemon to cfg. Windows already open keep
// their geometry; new commands use the new policy and viewport.
func (d *daemonState) apply(cfg *config.Config, files []string) {
	d.manager.SetPolicy(cfg.Policy())
	d.logLevel.Set(cfg.SlogLevel())
	d.changes.SetVerbose(cfg.Logging.Events)

	if cfg.Viewport != d.cfg.Viewport {
		src, closeFn := viewport.New(cfg.Viewport)
		d.vp.Set(src)
		d.closeVP()
		d.closeVP = closeFn
		log.Printf("Viewport source switched to %s", cfg.Viewport.Source)
	}

	if d.watcher != nil && len(files) > 0 {
		if err := d.watcher.SetFiles(files); err != nil {
			log.Printf("Warning: failed to update config watch list: %v", err)
		}
	}
	if cfg.AuditInterval() != d.cfg.AuditInterval() {
		log.Printf("audit_interval_seconds changes take effect after a daemon restart")
	}

	d.cfg = cfg
	d.configFiles = files
}

// reloadFromDisk reloads config for SIGHUP and file-change triggers.
func (d *daemonState) reloadFromDisk() {
	res, err := config.LoadWithSources()
	if err != nil {
		log.Printf("Config reload failed: %v", err)
		return
	}
	d.ipcServer.UpdateLoaded(res)
	d.apply(res.Config, watchFiles(res.Files))
	log.Println("Config reloaded successfully")
}

// watchFiles returns the files a watcher should follow: every loaded
// file, or the default path when none exists yet.
func watchFiles(loaded []string) []string {
	if len(loaded) > 0 {
		return loaded
	}
	if path, err := config.DefaultConfigPath(); err == nil {
		return []string{path}
	}
	return nil
}

func runDaemon() {
	res, err := config.LoadWithSources()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	log.Printf("Configuration loaded (viewport: %s, components: %d, chrome: %dpx)",
		cfg.Viewport.Source, len(cfg.Components), cfg.ChromeHeight)

	logLevel := new(slog.LevelVar)
	logLevel.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	src, closeVP := viewport.New(cfg.Viewport)
	vp := viewport.NewSwitch(src)
	if current, err := vp.Viewport(); err != nil {
		log.Printf("Warning: viewport not available yet: %v", err)
	} else {
		log.Printf("Viewport: %dx%d", current.Width, current.Height)
	}

	manager := wm.NewManager(wm.Options{
		Policy:   cfg.Policy(),
		Viewport: vp,
	})

	state := &daemonState{
		cfg:         cfg,
		manager:     manager,
		vp:          vp,
		closeVP:     closeVP,
		logLevel:    logLevel,
		changes:     daemon.NewChangeLogger(manager, logger, cfg.Logging.Events),
		configFiles: watchFiles(res.Files),
	}
	defer func() {
		state.changes.Close()
		state.closeVP()
	}()

	// Create config reload channel
	reloadChan := make(chan struct{}, 1)

	ipcServer, err := ipc.NewServer(cfg, manager, vp, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()
	ipcServer.UpdateLoaded(res)
	state.ipcServer = ipcServer

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if interval := cfg.AuditInterval(); interval > 0 {
		auditor := daemon.NewAuditor(daemon.AuditorConfig{
			Interval: interval,
			Logger:   logger,
		}, manager)
		go auditor.Run(ctx)
	}

	fileChanged := make(chan struct{}, 1)
	if cfg.GetWatchConfig() {
		watcher, err := daemon.NewConfigWatcher(state.configFiles, func() {
			select {
			case fileChanged <- struct{}{}:
			default:
			}
		}, logger)
		if err != nil {
			log.Printf("Warning: config file watching disabled: %v", err)
		} else {
			state.watcher = watcher
			go watcher.Run(ctx)
		}
	}

	log.Println("shellwm daemon started successfully")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				log.Println("Received SIGHUP, reloading config...")
				state.reloadFromDisk()
			case os.Interrupt, syscall.SIGTERM:
				log.Println("Shutting down shellwm daemon...")
				return
			}

		case <-fileChanged:
			log.Println("Config file changed, reloading...")
			state.reloadFromDisk()

		case <-reloadChan:
			// Config was reloaded via IPC; the server already holds it.
			newCfg, files := ipcServer.Loaded()
			state.apply(newCfg, watchFiles(files))
			log.Println("Config reloaded via IPC")
		}
	}
}
