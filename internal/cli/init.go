package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pelotonworks/stattrack/internal/engine"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init <namespace>",
		Short: "Initialize a namespace",
		Long: `Initialize a namespace under the data root.

Creates the directory skeleton and the history store with the current
schema. When the namespace carries an init_cdb.sqlite game database and
no snapshot exists yet, stats.yaml is seeded from its cyclist table;
otherwise an empty snapshot is written. Idempotent.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, args[0], cmd)
		},
	}
}

func runInit(opts *RootOptions, ns string, cmd *cobra.Command) error {
	formatter := opts.Printer(cmd)
	eng := engine.New(opts.Layout(), slog.Default())

	if err := eng.InitNamespace(cmd.Context(), ns); err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return wrapExit(ExitCommandError, "init", err)
	}

	if formatter.Format == "json" {
		return formatter.JSON(map[string]string{"namespace": ns, "state": "initialized"})
	}
	fmt.Fprintf(formatter.Out, "✓ namespace %q initialized\n", ns)
	return nil
}
