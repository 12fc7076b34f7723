package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pelotonworks/stattrack/internal/engine"
)

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply [namespace]",
		Short: "Replay generated SQL artifacts into the history store",
		Long: `Replay generated inserts.sql artifacts into the history store.

Every change directory missing from the target store's ledger has its
artifact executed, oldest first, each in its own transaction; a failing
artifact rolls back alone and the rest of the queue continues.
Afterwards the tracking export view is dumped to tracking_export.csv.

Intended for stores that do not yet carry the artifacts, such as a UAT
copy; against an up-to-date store it only refreshes the export.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(rootOpts, args, cmd)
		},
	}
}

func runApply(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.Printer(cmd)
	eng := engine.New(opts.Layout(), slog.Default())

	if len(args) == 1 {
		sum := eng.ApplyNamespace(cmd.Context(), args[0])
		return outputNamespaceSummary(formatter, "applied", sum)
	}

	batch, err := eng.ApplyAll(cmd.Context())
	if err != nil {
		_ = formatter.Error(ErrCodeDataDir, err.Error(), nil)
		return wrapExit(ExitCommandError, "apply", err)
	}
	return outputBatchSummary(formatter, "applied", batch)
}
