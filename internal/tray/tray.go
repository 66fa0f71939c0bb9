package tray

import (
	"context"
	"os/exec"
	"runtime"
	"sync"

	"fyne.io/systray"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Actions are the callbacks behind the tray menu.
type Actions struct {
	// Shutdown is called once when "Exit" is clicked.
	Shutdown func()
	// Calibrate plays the haptics calibration sequence.
	Calibrate func(ctx context.Context)
	// Connected reports whether a controller is active; it drives the icon.
	Connected func() bool
}

// Tray manages the system tray icon and menu.
type Tray struct {
	url     string
	actions Actions
	logger  *zap.SugaredLogger

	once         sync.Once
	shuttingDown atomic.Bool
	ready        atomic.Bool
	connected    atomic.Bool
	ctx          context.Context
	cancel       context.CancelFunc

	menuOpen      *systray.MenuItem
	menuCalibrate *systray.MenuItem
	menuExit      *systray.MenuItem
}

// New creates a Tray whose "Open" item points at url.
func New(url string, actions Actions, logger *zap.SugaredLogger) *Tray {
	ctx, cancel := context.WithCancel(context.Background())
	return &Tray{
		url:     url,
		actions: actions,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Run shows the tray and blocks until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	t.shuttingDown.Store(true)
	systray.Quit()
}

// SetConnected updates the icon when the controller state changes. Calls
// before the tray is shown only record the state.
func (t *Tray) SetConnected(connected bool) {
	if t.connected.Swap(connected) == connected || !t.ready.Load() {
		return
	}
	t.setIcon(connected)
	if connected {
		systray.SetTooltip("padnav: controller connected")
	} else {
		systray.SetTooltip("padnav: no controller")
	}
}

func (t *Tray) setIcon(connected bool) {
	icon, err := drawIcon(connected)
	if err != nil {
		t.logger.Warnw("tray icon", "error", err)
		return
	}
	systray.SetIcon(icon)
}

func (t *Tray) onReady() {
	if t.actions.Connected != nil {
		t.connected.Store(t.actions.Connected())
	}
	t.setIcon(t.connected.Load())
	systray.SetTitle("padnav")
	systray.SetTooltip("padnav - " + t.url)

	t.menuOpen = systray.AddMenuItem("Open status page", "Open the web status page")
	t.menuCalibrate = systray.AddMenuItem("Calibrate haptics", "Play the calibration pulses")
	systray.AddSeparator()
	t.menuExit = systray.AddMenuItem("Exit", "Quit padnav")

	t.ready.Store(true)
	go t.handleMenuClicks()

	t.logger.Info("system tray initialized")
}

func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-t.menuCalibrate.ClickedCh:
			if !t.shuttingDown.Load() && t.actions.Calibrate != nil {
				go t.actions.Calibrate(t.ctx)
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				t.cancel()
				if t.actions.Shutdown != nil {
					t.once.Do(t.actions.Shutdown)
				}
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	t.cancel()
	t.logger.Info("system tray exiting")
}

func (t *Tray) openBrowser() {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", t.url)
	case "darwin":
		cmd = exec.Command("open", t.url)
	default:
		cmd = exec.Command("xdg-open", t.url)
	}
	if err := cmd.Start(); err != nil {
		t.logger.Warnw("failed to open browser", "url", t.url, "error", err)
	}
}
