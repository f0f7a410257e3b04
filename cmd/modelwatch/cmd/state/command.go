// Package state implements commands that inspect persisted snapshots.
package state

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/modelwatch/internal/cmd/application"
	"github.com/agentstation/modelwatch/internal/cmd/output"
	"github.com/agentstation/modelwatch/pkg/errors"
	"github.com/agentstation/modelwatch/pkg/logging"
	pkgstate "github.com/agentstation/modelwatch/pkg/state"
)

// NewCommand creates the state command group.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "state",
		GroupID: "management",
		Short:   "Inspect the persisted model snapshots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newShowCommand(app))
	return cmd
}

func newShowCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "show [region...]",
		Short: "Print the stored snapshot for each region",
		Long: `Show prints the stored snapshot of each region, YAML by default. Without
arguments it shows every configured target region. Regions with no
snapshot yet are skipped.`,
		Example: `  modelwatch state show
  modelwatch state show us-east-1 -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := logging.Ctx(ctx)

			format, err := output.ParseFormat(app.OutputFormat())
			if err != nil {
				return err
			}
			if format == "" {
				format = output.FormatYAML
			}

			regions := args
			if len(regions) == 0 {
				regions = app.Regions()
			}
			if len(regions) == 0 {
				return errors.NewConfigError("state", "no regions given and TARGET_REGIONS is empty", nil)
			}

			store, err := app.StateStore(ctx)
			if err != nil {
				return err
			}

			docs := make([]pkgstate.Document, 0, len(regions))
			for _, region := range regions {
				rec, err := store.Record(ctx, region)
				if errors.IsNotFound(err) {
					logger.Warn().Str("region", region).Msg("No snapshot stored")
					continue
				}
				if err != nil {
					return errors.NewPersistenceReadError(region, err)
				}
				docs = append(docs, rec.Document())
			}

			var data any = docs
			if format == output.FormatTable || format == output.FormatText {
				data = output.StateTable(docs)
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
		},
	}
}
