package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"

	"modeon/internal/classify"
	"modeon/internal/config"
	"modeon/internal/core/model"
	"modeon/internal/core/tracker"
	"modeon/internal/platform"
	"modeon/internal/server"
	"modeon/internal/storage"
	"modeon/internal/ui/notify"
	"modeon/internal/ui/overlay"
	"modeon/internal/ui/preferences"
	"modeon/internal/ui/tray"
	"modeon/resources"
)

const trayRefreshInterval = time.Second

func newServeCmd(opts *options) *cobra.Command {
	var withTray bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tracking server the browser extension talks to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := opts.loadSettings()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("tray") {
				settings.Tray = withTray
			}
			logger, err := newLogger(os.Stderr, settings)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), settings, logger)
		},
	}
	cmd.Flags().BoolVar(&withTray, "tray", false, "show a system tray icon and desktop notifications")
	return cmd
}

// daemon is the wired server process.
type daemon struct {
	settings    config.Settings
	logger      *slog.Logger
	tracker     *tracker.Tracker
	broadcaster *server.Broadcaster
	handler     *server.Server
	sinks       *notify.Multi
	history     *storage.HistoryStore
	guard       *platform.InstanceGuard
	stateDir    string
	started     bool
}

func serve(ctx context.Context, settings config.Settings, logger *slog.Logger) error {
	d, err := newDaemon(ctx, settings, logger)
	if err != nil {
		return err
	}
	defer d.close()

	var ui *trayUI
	if settings.Tray {
		if ui, err = d.newTrayUI(); err != nil {
			logger.Warn("tray unavailable, serving headless", "error", err)
		}
	}
	d.start(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		_ = d.tracker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		d.broadcaster.Run(ctx, d.tracker.Subscribe(32), settings.SnapshotInterval)
	}()
	go func() {
		defer wg.Done()
		if err := server.ListenAndServe(ctx, settings.Addr(), d.handler.Handler(), logger); err != nil {
			errCh <- err
			cancel()
		}
	}()

	if ui != nil {
		ui.run(ctx, cancel)
	} else {
		<-ctx.Done()
	}
	cancel()
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		logger.Info("server stopped")
		return nil
	}
}

func newDaemon(ctx context.Context, settings config.Settings, logger *slog.Logger) (*daemon, error) {
	guard, err := platform.AcquireSingleInstance(config.AppName + "-" + settings.Addr())
	if err != nil {
		return nil, err
	}

	stateDir := settings.StateDir
	if stateDir == "" {
		stateDir = storage.DefaultStateDir(config.AppName)
	}
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		_ = guard.Release()
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	history, err := storage.OpenHistory(ctx, storage.HistoryPath(stateDir))
	if err != nil {
		_ = guard.Release()
		return nil, err
	}

	d := &daemon{
		settings: settings,
		logger:   logger,
		sinks:    &notify.Multi{notify.NewLog(logger)},
		history:  history,
		guard:    guard,
		stateDir: stateDir,
	}

	var idle tracker.IdleChecker
	if settings.IdlePauseEnabled {
		idle = platform.NewIdleProvider()
	}
	d.tracker = tracker.New(settings.TrackerConfig(), tracker.Deps{
		Persistence: storage.NewStateStore(stateDir),
		Notifier:    notify.New(d.sinks),
		Classifier:  classify.New(settings.ClassifyOptions()),
		IdleChecker: idle,
		History:     history,
		Logger:      logger,
	})
	d.broadcaster = server.NewBroadcaster(server.Snapshot(d.tracker), logger)
	d.addSink(d.broadcaster)
	d.handler = server.NewServer(d.tracker, d.broadcaster, server.Options{
		AllowedOrigins: settings.AllowedOrigins,
		AuthToken:      settings.Token,
		Logger:         logger,
	})
	return d, nil
}

// addSink attaches a notification sink. Sinks are fixed once start has run.
func (d *daemon) addSink(sink notify.Sink) {
	if d.started {
		d.logger.Warn("notification sink added after start, ignored")
		return
	}
	*d.sinks = append(*d.sinks, sink)
}

// start restores persisted state. Notifications raised while reconciling it
// reach every attached sink.
func (d *daemon) start(ctx context.Context) {
	d.started = true
	d.tracker.Init(ctx)
	d.logger.Info("modeon starting", "addr", d.settings.Addr(), "state_dir", d.stateDir, "tray", d.settings.Tray)
}

// trayUI is the Fyne tray front end of a daemon.
type trayUI struct {
	daemon  *daemon
	app     fyne.App
	desktop desktop.App
}

// newTrayUI creates the Fyne app. It must run before start, since it
// extends the sink list.
func (d *daemon) newTrayUI() (*trayUI, error) {
	fyneApp := app.NewWithID("io.modeon.app")
	fyneApp.SetIcon(resources.MustTrayIcon(resources.IconFocus))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return nil, fmt.Errorf("system tray unsupported on this platform")
	}

	if d.settings.DesktopNotifications {
		d.addSink(notify.NewDesktop(fyneApp))
	}
	return &trayUI{daemon: d, app: fyneApp, desktop: desktopApp}, nil
}

// run blocks in the Fyne event loop until the tray quits or ctx ends.
func (ui *trayUI) run(ctx context.Context, cancel context.CancelFunc) {
	d := ui.daemon

	trayWindow := ui.app.NewWindow("modeon")
	trayWindow.SetContent(widget.NewLabel("modeon is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	ui.desktop.SetSystemTrayWindow(trayWindow)

	session := preferences.New(ui.app, preferences.Actions{
		OnStart: func(keyword string, patch model.BreakSettingsPatch) error {
			_, err := d.tracker.StartSession(ctx, keyword, &patch)
			return err
		},
		OnSaveBreaks: func(patch model.BreakSettingsPatch) error {
			_, err := d.tracker.UpdateBreakSettings(patch)
			return err
		},
	})

	manager := tray.New(ui.desktop, tray.Callbacks{
		OnOpen:       func() { session.Show(d.tracker.Status()) },
		OnStartBreak: func() { d.tracker.StartBreakNow() },
		OnSkipBreak:  func() { d.tracker.SkipBreak() },
		OnStopSession: func() {
			if _, err := d.tracker.StopSession(ctx); err != nil {
				d.logger.Warn("stop session from tray failed", "error", err)
			}
		},
		OnQuit: func() {
			cancel()
			ui.app.Quit()
		},
	})
	var breakView *overlay.Controller
	if d.settings.BreakWindow {
		breakWindow := overlay.New(ui.app, overlay.Config{
			Opacity:    overlay.AlphaFromPercent(d.settings.BreakWindowOpacity),
			Fullscreen: d.settings.BreakWindowFullscreen,
		})
		breakView = overlay.NewController(breakWindow)
		breakWindow.SetOnSkip(func() { d.tracker.SkipBreak() })
		breakWindow.SetOnClose(breakView.Dismiss)
	}

	update := func(status model.TrackerStatus) {
		manager.Update(status)
		if breakView != nil {
			breakView.Update(status)
		}
	}
	update(d.tracker.Status())

	events := d.tracker.Subscribe(8)
	go func() {
		ticker := time.NewTicker(trayRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				fyne.Do(ui.app.Quit)
				return
			case _, ok := <-events:
				if !ok {
					return
				}
			case <-ticker.C:
			}
			status := d.tracker.Status()
			fyne.Do(func() { update(status) })
		}
	}()

	ui.app.Run()
}

func (d *daemon) close() {
	d.tracker.Close()
	if err := d.history.Close(); err != nil {
		d.logger.Warn("close history failed", "error", err)
	}
	if err := d.guard.Release(); err != nil {
		d.logger.Warn("release instance lock failed", "error", err)
	}
}
