package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"flywrapper/internal/check"
	"flywrapper/internal/domain"
	"flywrapper/internal/requirement"
)

func manifestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Read and validate a setup.py manifest",
	}
	cmd.AddCommand(manifestShowCmd(), manifestCheckCmd())
	return cmd
}

func manifestShowCmd() *cobra.Command {
	var file, output string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the parsed manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := loadManifest(file)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), output, m, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "name:\t%s\n", orDash(m.Name))
				fmt.Fprintf(tw, "version:\t%s\n", orDash(m.Version))
				if m.Description != "" {
					fmt.Fprintf(tw, "description:\t%s\n", m.Description)
				}
				if m.PythonRequires != "" {
					fmt.Fprintf(tw, "python_requires:\t%s\n", m.PythonRequires)
				}
				fmt.Fprintf(tw, "entry points:\t%s\n", orDash(strings.Join(m.EntryPoints(), ", ")))
				fmt.Fprintf(tw, "requires:\t%d\n", len(m.Requires))
				for _, r := range m.Requires {
					writeRequirement(tw, r)
				}
				for _, key := range m.Unresolved {
					fmt.Fprintf(tw, "unresolved:\t%s\n", key)
				}
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "setup.py to read (default: fly-wrapper's own)")
	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format: text, json or yaml")
	return cmd
}

func writeRequirement(tw *tabwriter.Writer, r domain.Requirement) {
	if r.Invalid != "" {
		fmt.Fprintf(tw, "  %s\t(invalid: %s)\n", r.Raw, r.Invalid)
		return
	}
	fmt.Fprintf(tw, "  %s\t\n", requirement.String(r))
}

func manifestCheckCmd() *cobra.Command {
	var (
		file, output     string
		strict, pedantic bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a manifest and report problems",
		Long: `Checks package metadata, every declared requirement and the entry points.

Exits non-zero when any error is found, or any warning with --strict.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, source, err := loadManifest(file)
			if err != nil {
				return err
			}
			report := check.Run(m, check.Options{Pedantic: pedantic})
			logger.Debug("manifest checked")

			err = render(cmd.OutOrStdout(), output, report, func(tw *tabwriter.Writer) {
				for _, d := range report.Diagnostics {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Severity, d.Code, d.Subject, d.Message)
				}
				fmt.Fprintf(tw, "%s: %d error(s), %d warning(s)\n", source,
					report.Count(domain.SeverityError), report.Count(domain.SeverityWarning))
			})
			if err != nil {
				return err
			}
			if report.Failed(strict) {
				return errSilent
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "setup.py to read (default: fly-wrapper's own)")
	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format: text, json or yaml")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as failures")
	cmd.Flags().BoolVar(&pedantic, "pedantic", false, "also report informational findings")
	return cmd
}
