package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flywrapper/internal/app"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the fly configuration",
	}
	cmd.AddCommand(configShowCmd(), configInitCmd())
	return cmd
}

// configFile is where config init writes and where LoadConfig reads by default.
func configFile() string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(cfg.Home, app.ConfigFileName)
}

func configShowCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return render(cmd.OutOrStdout(), output, cfg, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "home:\t%s\n", cfg.Home)
				fmt.Fprintf(tw, "index_url:\t%s\n", cfg.IndexURL)
				fmt.Fprintf(tw, "api:\t%s\n", cfg.API)
				fmt.Fprintf(tw, "timeout:\t%s\n", cfg.Timeout)
				fmt.Fprintf(tw, "cache_ttl:\t%s\n", cfg.CacheTTL)
				fmt.Fprintf(tw, "concurrency:\t%d\n", cfg.Concurrency)
				fmt.Fprintf(tw, "log_level:\t%s\n", cfg.LogLevel)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format: text, json or yaml")
	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			path := configFile()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			logger.Debug("config written", zap.String("path", path))
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
