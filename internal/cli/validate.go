package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pelotonworks/stattrack/internal/namespace"
	"github.com/pelotonworks/stattrack/internal/validate"
)

// FileReport is one validated file's outcome.
type FileReport struct {
	Path   string           `json:"path"`
	Valid  bool             `json:"valid"`
	Issues []validate.Issue `json:"issues,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool         `json:"valid"`
	Files []FileReport `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [namespace]",
		Short: "Validate change records and snapshots without processing",
		Long: `Validate change records and snapshot files against their schemas.

Checks every change.yaml under the namespace's change directories and
the stats.yaml snapshot, without touching the history store. Faster
than a processing run for authoring feedback.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
}

func runValidate(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.Printer(cmd)
	layout := opts.Layout()

	names := args
	if len(names) == 0 {
		var err error
		names, err = layout.List()
		if err != nil {
			_ = formatter.Error(ErrCodeDataDir, err.Error(), nil)
			return wrapExit(ExitCommandError, "validate", err)
		}
	}

	result := ValidationResult{Valid: true}
	for _, ns := range names {
		reports, err := validateNamespace(layout, ns)
		if err != nil {
			_ = formatter.Error(ErrCodeDataDir, err.Error(), nil)
			return wrapExit(ExitCommandError, "validate", err)
		}
		result.Files = append(result.Files, reports...)
	}
	for _, f := range result.Files {
		if !f.Valid {
			result.Valid = false
			break
		}
	}

	return outputValidationResult(formatter, result)
}

// validateNamespace checks the namespace's snapshot and every change
// record against their schemas.
func validateNamespace(layout *namespace.Layout, ns string) ([]FileReport, error) {
	var reports []FileReport

	statsPath := layout.Path(ns, namespace.StatsFile)
	if _, err := os.Stat(statsPath); err == nil {
		res := validate.StatsFile(statsPath)
		reports = append(reports, FileReport{Path: statsPath, Valid: res.OK, Issues: res.Issues})
	}

	dirs, err := layout.ListChangeDirs(ns)
	if err != nil {
		return nil, err
	}
	for _, name := range dirs {
		path := layout.FindChangeFile(ns, name)
		if path == "" {
			reports = append(reports, FileReport{
				Path:  layout.Path(ns, namespace.ChangesDir) + "/" + name,
				Valid: false,
				Issues: []validate.Issue{{
					Message: "change directory has no change.yaml or change.yml",
				}},
			})
			continue
		}
		res := validate.ChangeFile(path)
		reports = append(reports, FileReport{Path: path, Valid: res.OK, Issues: res.Issues})
	}

	return reports, nil
}

func outputValidationResult(f *Printer, result ValidationResult) error {
	if f.Format == "json" {
		if err := f.JSON(result); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintf(f.Out, "✓ %d file(s) valid\n", len(result.Files))
	} else {
		fmt.Fprintln(f.Out, "✗ Validation failed")
		fmt.Fprintln(f.Out)
		for _, file := range result.Files {
			if file.Valid {
				f.Debugf("  ✓ %s", file.Path)
				continue
			}
			fmt.Fprintf(f.Out, "%s\n", file.Path)
			for _, issue := range file.Issues {
				fmt.Fprintf(f.Out, "  %s\n", issue)
			}
			fmt.Fprintln(f.Out)
		}
	}

	if !result.Valid {
		return failf(ExitFailure, "validation failed")
	}
	return nil
}
