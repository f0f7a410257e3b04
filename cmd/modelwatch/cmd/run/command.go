// Package run implements the one-shot detection command.
package run

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/modelwatch"
	"github.com/agentstation/modelwatch/internal/cmd/application"
	"github.com/agentstation/modelwatch/internal/cmd/output"
	"github.com/agentstation/modelwatch/pkg/errors"
)

// Flags holds the run command's flags.
type Flags struct {
	DryRun  bool
	Regions []string
}

// NewCommand creates the run command.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "run",
		GroupID: "core",
		Short:   "Run one detection pass and print the result",
		Long: `Run lists foundation models in every target region, compares them with the
persisted snapshot, notifies about new model IDs and saves the merged
snapshot.

The command exits non-zero when any region could not be listed or saved,
or when the notification failed.`,
		Example: `  modelwatch run                            # Detect, notify and persist
  modelwatch run --dry-run -o yaml          # Preview without side effects
  modelwatch run --regions us-east-1        # Override TARGET_REGIONS`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return Execute(cmd, app, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "detect only: skip notification and persistence")
	cmd.Flags().StringSliceVar(&flags.Regions, "regions", nil, "regions to check (overrides TARGET_REGIONS)")

	return cmd
}

// Execute runs a detection pass and prints its report.
func Execute(cmd *cobra.Command, app application.Application, flags *Flags) error {
	ctx := cmd.Context()

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}

	var opts []modelwatch.Option
	if flags.DryRun {
		opts = append(opts, modelwatch.WithDryRun(true))
	}
	if len(flags.Regions) > 0 {
		opts = append(opts, modelwatch.WithRegions(flags.Regions...))
	}

	detector, err := app.Detector(ctx, opts...)
	if err != nil {
		return err
	}

	result, err := detector.Run(ctx)
	if err != nil {
		return err
	}

	if err := Print(cmd.OutOrStdout(), output.DetectFormat(string(format)), result.Report()); err != nil {
		return err
	}

	if !result.Success {
		return fmt.Errorf("%w: %d error(s)", errors.ErrIncompleteRun, len(result.Errors))
	}
	return nil
}

// Print writes rep in the given format.
func Print(w io.Writer, format output.Format, rep modelwatch.Report) error {
	formatter := output.NewFormatter(format)
	switch format {
	case output.FormatTable:
		return formatter.Format(w, output.RunTable(rep))
	case output.FormatText:
		return formatter.Format(w, output.RunText(rep))
	default:
		return formatter.Format(w, rep)
	}
}
