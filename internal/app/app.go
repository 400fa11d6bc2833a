// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/tejashwikalptaru/tunestream/internal/adapter/audio/beep"
	"github.com/tejashwikalptaru/tunestream/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/tunestream/internal/adapter/catalog/rest"
	"github.com/tejashwikalptaru/tunestream/internal/adapter/eventbus"
	fyneui "github.com/tejashwikalptaru/tunestream/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/tunestream/internal/config"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
	"github.com/tejashwikalptaru/tunestream/internal/service"
)

// AppID is the Fyne application identifier.
const AppID = "com.tunestream.app"

// ErrHeadless is returned by Run when the application was built without a window.
var ErrHeadless = errors.New("application has no user interface")

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for the commands in cmd/
type Application struct {
	// Core dependencies
	cfg    *config.Config
	logger *slog.Logger

	// Infrastructure
	eventBus *eventbus.SyncEventBus
	catalog  ports.CatalogClient
	backend  ports.MediaBackend

	// Services
	session *service.Session

	// UI, nil when headless
	fyneApp    fyne.App
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	shutdownOnce sync.Once
	shutdownErr  error
}

// Options adjusts how the application is assembled.
type Options struct {
	// Headless skips the Fyne window; the command line tools use the session directly
	Headless bool

	// FyneApp allows injecting a test Fyne app (nil for production)
	FyneApp fyne.App

	// Catalog replaces the REST client (nil for production)
	Catalog ports.CatalogClient

	// Logger replaces the logger built from the configuration
	Logger *slog.Logger
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(cfg *config.Config, opts Options) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{cfg: cfg}

	// Step 1: Create logger
	app.logger = opts.Logger
	if app.logger == nil {
		app.logger = logger.NewLogger(cfg.LoggerConfig())
	}
	app.logger.Info("initializing application",
		slog.String("version", GetVersionInfo().FullString()),
		slog.String("server", cfg.ServerURL))

	// Step 2: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus(app.logger.With(slog.String("component", "eventbus")))

	// Step 3: Create the catalog client
	app.catalog = opts.Catalog
	if app.catalog == nil {
		app.catalog = rest.NewClient(cfg.ServerURL,
			rest.WithTimeout(cfg.HTTPTimeout),
			rest.WithLogger(app.logger.With(slog.String("component", "catalog"))))
	}

	// Step 4: Create the media backend
	app.backend = app.newBackend()

	// Step 5: Create the session (selection + transport)
	app.session = service.NewSession(
		app.logger.With(slog.String("service", "session")),
		app.catalog,
		app.backend,
		app.eventBus,
	)

	if opts.Headless {
		return app, nil
	}

	// Step 6: Create UI
	if opts.FyneApp != nil {
		app.fyneApp = opts.FyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(AppID)
	}
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, cfg.UI.WindowWidth, cfg.UI.WindowHeight, GetVersionInfo().FullString())

	// Step 7: Create Presenter and wire with UI
	app.presenter = fyneui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		app.session,
		app.eventBus,
		app.mainWindow,
	)

	// Connect presenter to the main window
	app.mainWindow.SetPresenter(app.presenter)

	return app, nil
}

// newBackend picks the configured media backend. Builds without audio
// output fall back to the mock backend, which plays silently in real time.
func (a *Application) newBackend() ports.MediaBackend {
	if a.cfg.Audio.Backend == config.BackendBeep {
		if beep.Available() {
			beepCfg := beep.DefaultConfig()
			beepCfg.SampleRate = a.cfg.Audio.SampleRate
			beepCfg.Buffer = a.cfg.Audio.Buffer
			beepCfg.HTTPClient = &http.Client{Timeout: a.cfg.Audio.StreamTimeout}
			return beep.NewBackend(a.logger.With(slog.String("backend", "beep")), beepCfg)
		}
		a.logger.Warn("audio output is not available in this build, using the mock backend")
	}

	backend := mock.NewBackend()
	backend.SetLogger(a.logger.With(slog.String("backend", "mock")))
	backend.StartSimulation(a.cfg.Audio.MockInterval)
	return backend
}

// Run starts the application.
// It shows the main window and blocks until it is closed.
func (a *Application) Run() error {
	if a.mainWindow == nil {
		return ErrHeadless
	}

	a.logger.Info("TuneStream started")
	a.presenter.Start()

	// Show and run UI (blocks until the window is closed)
	a.mainWindow.ShowAndRun()
	return nil
}

// Session returns the selection and transport services.
func (a *Application) Session() *service.Session {
	return a.session
}

// Catalog returns the catalog client.
func (a *Application) Catalog() ports.CatalogClient {
	return a.catalog
}

// EventBus returns the application event bus.
func (a *Application) EventBus() ports.EventBus {
	return a.eventBus
}

// Logger returns the application logger.
func (a *Application) Logger() *slog.Logger {
	return a.logger
}

// Config returns the configuration the application was built with.
func (a *Application) Config() *config.Config {
	return a.cfg
}

// Shutdown gracefully shuts down the application.
// It's safe to call multiple times (idempotent).
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		// Shutdown UI and presenter
		if a.presenter != nil {
			a.presenter.Shutdown()
		}

		// Shutdown services, which also closes the media backend
		var errs []error
		if err := a.session.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown session", slog.Any("error", err))
			errs = append(errs, err)
		}

		if err := a.eventBus.Close(); err != nil {
			a.logger.Warn("failed to close event bus", slog.Any("error", err))
			errs = append(errs, err)
		}

		a.shutdownErr = errors.Join(errs...)
		a.logger.Info("application shutdown complete")
	})
	return a.shutdownErr
}
