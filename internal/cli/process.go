package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pelotonworks/stattrack/internal/engine"
)

// NewProcessCommand creates the process command.
func NewProcessCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "process [namespace]",
		Short: "Process pending change records",
		Long: `Process pending change records into the history store.

For each change directory not yet in the namespace's ledger, the record
is read, reconciled against the store's latest stat values, executed,
rendered to its inserts.sql artifact, and folded into the stats.yaml
snapshot. Records missing date or stats are skipped and stay pending;
use the validate command for full schema checks. Without an argument,
every namespace under the data root is processed; one namespace failing
never stops the others.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(rootOpts, args, cmd)
		},
	}
}

func runProcess(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.Printer(cmd)
	eng := engine.New(opts.Layout(), slog.Default())

	if len(args) == 1 {
		sum := eng.ProcessNamespace(cmd.Context(), args[0])
		return outputNamespaceSummary(formatter, "processed", sum)
	}

	batch, err := eng.ProcessAll(cmd.Context())
	if err != nil {
		_ = formatter.Error(ErrCodeDataDir, err.Error(), nil)
		return wrapExit(ExitCommandError, "process", err)
	}
	return outputBatchSummary(formatter, "processed", batch)
}

// outputNamespaceSummary renders one namespace's summary and maps
// failures to exit codes: namespace-level failure is a command error,
// change-level failure a pipeline failure.
func outputNamespaceSummary(f *Printer, verb string, sum *engine.NamespaceSummary) error {
	if sum.Err != "" {
		_ = f.Error(ErrCodeStore, sum.Err, nil)
		return failf(ExitCommandError, "%s", sum.Err)
	}

	if f.Format == "json" {
		if err := f.JSON(sum); err != nil {
			return err
		}
	} else {
		printNamespaceText(f, verb, sum)
	}

	if sum.Failed > 0 {
		return failf(ExitFailure, "%s %q with %d failed change(s)", verb, sum.Namespace, sum.Failed)
	}
	return nil
}

func outputBatchSummary(f *Printer, verb string, batch *engine.BatchSummary) error {
	if f.Format == "json" {
		if err := f.JSON(batch); err != nil {
			return err
		}
	} else {
		for _, sum := range batch.Namespaces {
			if sum.Err != "" {
				fmt.Fprintf(f.Out, "✗ %s: %s\n", sum.Namespace, sum.Err)
				continue
			}
			printNamespaceText(f, verb, sum)
		}
		fmt.Fprintf(f.Out, "\nrun %s: %d namespace(s) ok, %d failed, %d mutation(s)\n",
			batch.RunID, len(batch.Successful), len(batch.Failed), batch.TotalMutations)
	}

	if !batch.OverallSuccess {
		return failf(ExitFailure, "%d namespace(s) failed", len(batch.Failed))
	}
	return nil
}

func printNamespaceText(f *Printer, verb string, sum *engine.NamespaceSummary) {
	mark := "✓"
	if sum.Failed > 0 {
		mark = "✗"
	}
	fmt.Fprintf(f.Out, "%s %s: %d change(s) %s, %d skipped, %d failed, %d mutation(s)\n",
		mark, sum.Namespace, sum.Applied, verb, sum.Skipped, sum.Failed, sum.Mutations)

	for _, ch := range sum.Changes {
		switch {
		case ch.Skipped:
			fmt.Fprintf(f.Out, "  - %s skipped: %s\n", ch.Name, ch.Error)
		case ch.Error != "":
			fmt.Fprintf(f.Out, "  ✗ %s: %s\n", ch.Name, ch.Error)
		default:
			f.Debugf("  ✓ %s: %d mutation(s)", ch.Name, ch.Mutations)
		}
	}

	if sum.ExportedRows > 0 {
		fmt.Fprintf(f.Out, "  exported %d row(s)\n", sum.ExportedRows)
	}
}
