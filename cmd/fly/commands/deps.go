package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"flywrapper/internal/domain"
)

func depsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "List and resolve declared dependencies",
	}
	cmd.AddCommand(depsListCmd(), depsResolveCmd())
	return cmd
}

func depsListCmd() *cobra.Command {
	var file, output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List install_requires entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := loadManifest(file)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), output, m.Requires, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "NAME\tSPECIFIERS\tMARKER\tNOTE")
				for _, r := range m.Requires {
					specs := make([]string, len(r.Specifiers))
					for i, s := range r.Specifiers {
						specs[i] = s.String()
					}
					note := ""
					if r.Invalid != "" {
						note = "invalid"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, orDash(strings.Join(specs, ",")), orDash(r.Marker), note)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "setup.py to read (default: fly-wrapper's own)")
	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format: text, json or yaml")
	return cmd
}

func depsResolveCmd() *cobra.Command {
	var (
		file, output string
		pre, noCache bool
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Find the newest index release matching each dependency",
		Long: `Looks up every install_requires entry on the configured package index and
picks the newest release that satisfies its specifiers. Yanked releases are
only chosen when pinned with ==. Prereleases are only chosen with --pre, when
a specifier names one, or when nothing else matches.

Exits non-zero if any dependency is missing from the index or has no
matching release. Invalid and direct-reference entries are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := loadManifest(file)
			if err != nil {
				return err
			}
			w, err := wire()
			if err != nil {
				return err
			}
			resolver := w.Resolver
			if noCache {
				resolver = w.WithoutCache()
			}

			out, err := resolver.Resolve(cmd.Context(), m.Requires, domain.ResolveOptions{Pre: pre})
			if err != nil {
				return err
			}
			err = render(cmd.OutOrStdout(), output, out, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "NAME\tREQUIRED\tSTATUS\tVERSION\tDETAIL")
				for _, r := range out {
					specs := make([]string, len(r.Requirement.Specifiers))
					for i, s := range r.Requirement.Specifiers {
						specs[i] = s.String()
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Requirement.Name,
						orDash(strings.Join(specs, ",")), r.Status, orDash(r.Version), r.Detail)
				}
			})
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range out {
				if r.Status == domain.Unsatisfied || r.Status == domain.Failed {
					failed++
				}
			}
			if failed > 0 {
				logger.Info("unresolved dependencies", zap.Int("count", failed))
				return errSilent
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "setup.py to read (default: fly-wrapper's own)")
	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format: text, json or yaml")
	cmd.Flags().BoolVar(&pre, "pre", false, "allow prereleases")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the release cache")
	return cmd
}
