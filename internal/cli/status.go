package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pelotonworks/stattrack/internal/namespace"
	"github.com/pelotonworks/stattrack/internal/store"
)

// NamespaceStatus summarizes one namespace's on-disk and ledger state.
type NamespaceStatus struct {
	Namespace      string `json:"namespace"`
	Initialized    bool   `json:"initialized"`
	ChangeDirs     int    `json:"change_dirs"`
	AppliedChanges int    `json:"applied_changes"`
	PendingChanges int    `json:"pending_changes"`
	Cyclists       int    `json:"cyclists"`
	HistoryEntries int    `json:"history_entries"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status [namespace]",
		Short: "Show namespace ledger state",
		Long: `Show each namespace's ledger state: change directories found on
disk, how many are already in the store's ledger, and the store's
cyclist and history counts. Read-only.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(rootOpts, args, cmd)
		},
	}
}

func runStatus(opts *RootOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.Printer(cmd)
	layout := opts.Layout()

	names := args
	if len(names) == 0 {
		var err error
		names, err = layout.List()
		if err != nil {
			_ = formatter.Error(ErrCodeDataDir, err.Error(), nil)
			return wrapExit(ExitCommandError, "status", err)
		}
	}

	var statuses []NamespaceStatus
	for _, ns := range names {
		st, err := namespaceStatus(cmd, layout, ns)
		if err != nil {
			_ = formatter.Error(ErrCodeStore, err.Error(), nil)
			return wrapExit(ExitCommandError, "status", err)
		}
		statuses = append(statuses, st)
	}

	if formatter.Format == "json" {
		return formatter.JSON(statuses)
	}
	for _, s := range statuses {
		if !s.Initialized {
			fmt.Fprintf(formatter.Out, "%s: not initialized\n", s.Namespace)
			continue
		}
		fmt.Fprintf(formatter.Out,
			"%s: %d change(s) on disk, %d applied, %d pending, %d cyclist(s), %d history row(s)\n",
			s.Namespace, s.ChangeDirs, s.AppliedChanges, s.PendingChanges,
			s.Cyclists, s.HistoryEntries)
	}
	return nil
}

func namespaceStatus(cmd *cobra.Command, layout *namespace.Layout, ns string) (NamespaceStatus, error) {
	status := NamespaceStatus{Namespace: ns}

	dirs, err := layout.ListChangeDirs(ns)
	if err != nil {
		return status, err
	}
	status.ChangeDirs = len(dirs)

	dbPath := layout.Path(ns, namespace.TrackingDB)
	if _, err := os.Stat(dbPath); err != nil {
		status.PendingChanges = len(dirs)
		return status, nil
	}
	status.Initialized = true

	st, err := store.OpenExisting(dbPath)
	if err != nil {
		return status, err
	}
	defer st.Close()

	ctx := cmd.Context()
	applied, err := st.AppliedChanges(ctx)
	if err != nil {
		return status, err
	}
	for _, name := range dirs {
		if applied[name] {
			status.AppliedChanges++
		} else {
			status.PendingChanges++
		}
	}

	if status.Cyclists, err = st.CountCyclists(ctx); err != nil {
		return status, err
	}
	if status.HistoryEntries, err = st.CountHistoryEntries(ctx); err != nil {
		return status, err
	}
	return status, nil
}
