// Package cli implements the stattrack command tree.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pelotonworks/stattrack/internal/config"
	"github.com/pelotonworks/stattrack/internal/namespace"
)

// Error codes reported in CLI error output.
const (
	ErrCodeGeneric = "E001" // unexpected failure
	ErrCodeDataDir = "E002" // data root missing or unresolvable
	ErrCodeStore   = "E003" // history store missing or unopenable
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	DataDir string // overrides configuration when set
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the stattrack CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "stattrack",
		Short: "Cycling stat tracking pipeline",
		Long: "Tracks versioned cyclist stat changes across data namespaces:\n" +
			"change records are validated, reconciled into a SQLite history\n" +
			"store, rendered to reviewable SQL artifacts, and projected into\n" +
			"a current-state snapshot.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.DataDir == "" {
				opts.DataDir = cfg.DataDir
			}
			setupLogging(opts.Verbose, cfg.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "data root holding the namespaces (default from configuration)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewProcessCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))

	return cmd
}

// Layout resolves the namespace layout from the data root settled in
// PersistentPreRunE (--data-dir flag, or configuration).
func (o *RootOptions) Layout() *namespace.Layout {
	return namespace.NewLayout(o.DataDir)
}

// Printer builds the result printer for a command invocation.
func (o *RootOptions) Printer(cmd *cobra.Command) *Printer {
	return &Printer{
		Format:  o.Format,
		Out:     cmd.OutOrStdout(),
		Diag:    cmd.ErrOrStderr(),
		Verbose: o.Verbose,
	}
}

// setupLogging installs the process-wide text logger on stderr at the
// configured level. Verbose overrides the level to debug.
func setupLogging(verbose bool, level string) {
	l := parseLevel(level)
	if verbose {
		l = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: l,
	})))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
