package store

import (
	"context"
	"database/sql"
	"fmt"
)

// ExecScript executes a sequence of rendered statements inside one
// transaction. Any failure rolls back the whole sequence. The apply
// phase runs each artifact through this, so a broken artifact rolls
// back only its own change and leaves no ledger row behind.
func (s *Store) ExecScript(ctx context.Context, statements []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("exec script: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec script: statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("exec script: commit: %w", err)
	}
	return nil
}

// ExecTx runs fn inside one transaction, committing when it returns
// nil and rolling back otherwise.
func (s *Store) ExecTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("exec tx: begin: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("exec tx: commit: %w", err)
	}
	return nil
}

// Exec executes one parameterized statement outside any transaction.
func (s *Store) Exec(ctx context.Context, query string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	return nil
}
