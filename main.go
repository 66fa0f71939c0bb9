package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/soar/padnav/internal/config"
	"github.com/soar/padnav/internal/console"
	"github.com/soar/padnav/internal/gamepad"
	"github.com/soar/padnav/internal/hub"
	"github.com/soar/padnav/internal/logging"
	"github.com/soar/padnav/internal/sdlhost"
	"github.com/soar/padnav/internal/server"
	"github.com/soar/padnav/internal/tray"
)

// os.Interrupt covers Ctrl+C on every platform.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

const eventBuffer = 64

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Errorw("padnav stopped with errors", "error", err)
		logger.Sync() //nolint:errcheck
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	terminal := console.IsRunningFromConsole()
	showTray := cfg.Tray || !terminal

	if cfg.File != "" {
		logger.Infow("config loaded", "file", cfg.File)
	}
	shell, err := gamepad.ParseShell(cfg.HostShell, os.Getenv)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)
	consoleShutdown := make(chan struct{})
	reregister := console.SetupConsoleHandler(consoleShutdown, logger)

	events := make(chan hub.Event, eventBuffer)
	emit := func(ev hub.Event) {
		select {
		case events <- ev:
		default:
			logger.Debugw("event dropped, broadcaster busy")
		}
	}

	url := "http://" + displayAddr(cfg.Listen)
	var t *tray.Tray
	var mgr *gamepad.Manager
	host := sdlhost.New(logger.Named("sdl"))
	mgr = gamepad.NewManager(host, gamepad.Options{
		Logger:               logger.Named("gamepad"),
		Shell:                shell,
		PollInterval:         cfg.PollInterval,
		DirectionalThreshold: cfg.DirectionalThreshold,
		DisableHaptics:       !cfg.Haptics.Enabled,
		OnChange: func(s gamepad.Snapshot) {
			emit(hub.Event{Snapshot: &s})
			if t != nil {
				t.SetConnected(s.Connected)
			}
		},
		Feedback: func(i gamepad.Intent) {
			if cfg.Haptics.NavigationFeedback && i == gamepad.IntentConfirm {
				mgr.Vibrate(string(gamepad.PatternShort), 1)
			}
		},
	})
	logger.Infow("host shell", "shell", shell)

	h := hub.NewHub(logger.Named("hub"))
	go h.Run(ctx)

	broadcaster := hub.NewBroadcaster(h, events, clock.New(), logger.Named("broadcast"))
	broadcaster.Seed(mgr.Snapshot())
	go broadcaster.Run(ctx)

	srv := server.New(h, broadcaster, mgr, frontendFS(), cfg.Listen, logger.Named("http"))
	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	logger.Infow("padnav started", "url", url)

	trayShutdown := make(chan struct{})
	if showTray {
		t = tray.New(url, tray.Actions{
			Shutdown:  func() { close(trayShutdown) },
			Calibrate: mgr.Calibrate,
			Connected: mgr.IsConnected,
		}, logger.Named("tray"))
		go t.Run()
	} else {
		logger.Info("press Ctrl+C to exit")
	}

	// host.Run locks its own OS thread for SDL.
	var hostErr error
	hostDone := make(chan struct{})
	go func() {
		hostErr = host.Run(ctx, mgr)
		close(hostDone)
	}()
	go func() {
		select {
		case <-host.Ready():
			reregister()
		case <-ctx.Done():
		}
	}()

	poller := mgr.StartNavigation(func(f gamepad.NavigationIntentFrame, _ func()) {
		emit(hub.Event{Frame: &f})
	})

	var serveErr error
	select {
	case sig := <-sigCh:
		logger.Infow("shutting down", "signal", sig)
	case <-consoleShutdown:
		logger.Info("shutting down from console")
	case <-trayShutdown:
		logger.Info("shutdown requested from tray")
	case serveErr = <-serverErrCh:
		logger.Errorw("HTTP server error", "error", serveErr)
	case <-hostDone:
		logger.Warn("controller host stopped")
	}

	poller.Stop()
	cancel()
	<-hostDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	err = multierr.Combine(
		errors.Wrap(serveErr, "serve"),
		errors.Wrap(hostErr, "controller host"),
		srv.Shutdown(shutdownCtx),
	)
	if t != nil {
		t.Quit()
	}

	logger.Info("padnav stopped")
	return err
}

// displayAddr turns a listen address like ":8080" into something a browser
// can open.
func displayAddr(listen string) string {
	if strings.HasPrefix(listen, ":") {
		return "localhost" + listen
	}
	return listen
}
