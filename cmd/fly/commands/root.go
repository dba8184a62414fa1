package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flywrapper/internal/app"
	"flywrapper/internal/domain"
	"flywrapper/internal/manifest"
	"flywrapper/internal/selfmanifest"
)

var (
	home       string
	configPath string
	indexURL   string
	indexAPI   string
	verbose    bool

	cfg    *app.Config
	logger *zap.Logger
)

// errSilent makes Execute fail without cobra printing another message.
var errSilent = errors.New("")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fly",
		Short:         "Inspect, check and resolve the fly-wrapper packaging manifest",
		Version:       selfmanifest.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := app.DefaultHome()
				if err != nil {
					return err
				}
				home = dir
			}

			var err error
			cfg, err = app.LoadConfig(home, configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("home") {
				cfg.Home = home
			}
			if indexURL != "" {
				cfg.IndexURL = indexURL
			}
			if indexAPI != "" {
				cfg.API = indexAPI
			}

			logger, err = app.NewLogger(cfg.LogLevel, verbose)
			if err != nil {
				return err
			}
			logger.Debug("configuration loaded",
				zap.String("home", cfg.Home),
				zap.String("index", cfg.IndexURL),
				zap.String("api", cfg.API))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.fly-wrapper)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <home>/config.yaml)")
	root.PersistentFlags().StringVar(&indexURL, "index", "", "package index base URL (e.g. https://pypi.org)")
	root.PersistentFlags().StringVar(&indexAPI, "api", "", "index API: json or simple")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(versionCmd(), manifestCmd(), depsCmd(), cacheCmd(), configCmd())
	return root
}

// Execute runs the fly CLI.
func Execute() error {
	root := newRootCmd()
	err := root.Execute()
	if err != nil && !errors.Is(err, errSilent) {
		root.PrintErrln("Error:", err)
	}
	return err
}

// loadManifest reads path, or the embedded manifest when path is empty.
func loadManifest(path string) (domain.Manifest, string, error) {
	if path == "" {
		m, err := selfmanifest.Load()
		return m, "embedded setup.py", err
	}
	m, err := manifest.ParseFile(path)
	return m, path, err
}

// wire builds the index-facing dependencies from the loaded config.
func wire() (*app.Wire, error) {
	return app.NewWire(cfg, logger)
}
