package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pelotonworks/stattrack/internal/namespace"
	"github.com/pelotonworks/stattrack/internal/store"
)

// ExportResult reports one namespace's CSV export.
type ExportResult struct {
	Namespace string `json:"namespace"`
	Path      string `json:"path"`
	Rows      int    `json:"rows"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <namespace>",
		Short: "Export the tracking view to CSV",
		Long: `Export the namespace's tracking view to tracking_export.csv.

The view pivots the latest version of every (cyclist, stat) pair into
one row per cyclist, ordered by external id.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, args[0], cmd)
		},
	}
}

func runExport(opts *RootOptions, ns string, cmd *cobra.Command) error {
	formatter := opts.Printer(cmd)
	layout := opts.Layout()

	st, err := store.OpenExisting(layout.Path(ns, namespace.TrackingDB))
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return wrapExit(ExitCommandError, "export", err)
	}
	defer st.Close()

	path := layout.ExportPath(ns)
	rows, err := st.ExportCSV(cmd.Context(), path)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return wrapExit(ExitCommandError, "export", err)
	}

	if formatter.Format == "json" {
		return formatter.JSON(ExportResult{Namespace: ns, Path: path, Rows: rows})
	}
	fmt.Fprintf(formatter.Out, "✓ exported %d row(s) to %s\n", rows, path)
	return nil
}
