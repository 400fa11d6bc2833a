// Package cli implements the tunestream command line.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/tunestream/internal/app"
	"github.com/tejashwikalptaru/tunestream/internal/config"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
)

// globals are the flags shared by every command.
type globals struct {
	configPath string
	server     string
	logLevel   string
	backend    string
}

// env carries the global flags and the dependencies tests replace.
type env struct {
	flags globals

	catalog ports.CatalogClient
	logger  *slog.Logger
}

// NewRootCmd builds the tunestream command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&env{})
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:           "tunestream",
		Short:         "Browse and play a TuneStream music catalog",
		Version:       app.GetVersionInfo().Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGUI(e)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&e.flags.configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/tunestream/config.toml)")
	pf.StringVar(&e.flags.server, "server", "", "catalog server URL")
	pf.StringVar(&e.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&e.flags.backend, "backend", "", "audio backend: beep or mock")

	root.AddCommand(
		guiCmd(e),
		artistsCmd(e),
		albumsCmd(e),
		songsCmd(e),
		uploadCmd(e),
		playCmd(e),
	)
	return root
}

// loadConfig reads the config files and applies the flag overrides.
func (e *env) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(e.flags.configPath)
	if err != nil {
		return nil, err
	}
	if e.flags.server != "" {
		cfg.ServerURL = e.flags.server
	}
	if e.flags.logLevel != "" {
		cfg.LogLevel = e.flags.logLevel
	}
	if e.flags.backend != "" {
		cfg.Audio.Backend = e.flags.backend
	}
	return cfg, nil
}

// newApp builds the application. The caller must shut it down.
func (e *env) newApp(headless bool) (*app.Application, error) {
	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	return app.NewApplication(cfg, app.Options{
		Headless: headless,
		Catalog:  e.catalog,
		Logger:   e.logger,
	})
}

func guiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open the desktop player (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGUI(e)
		},
	}
}

func runGUI(e *env) error {
	application, err := e.newApp(false)
	if err != nil {
		return err
	}
	defer application.Shutdown()

	return application.Run()
}
