package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// ExportCSV regenerates the CSV dump of vw_tracking_export at path
// (header row + data rows, wholesale rewrite). Returns the number of
// data rows written; zero rows still produces a file with the header.
func (s *Store) ExportCSV(ctx context.Context, path string) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT * FROM vw_tracking_export`)
	if err != nil {
		return 0, fmt.Errorf("query tracking export view: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("tracking export columns: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return 0, fmt.Errorf("write export header: %w", err)
	}

	values := make([]any, len(columns))
	scan := make([]any, len(columns))
	for i := range values {
		scan[i] = &values[i]
	}

	count := 0
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return count, fmt.Errorf("scan export row: %w", err)
		}
		fields := make([]string, len(columns))
		for i, v := range values {
			fields[i] = csvField(v)
		}
		if err := w.Write(fields); err != nil {
			return count, fmt.Errorf("write export row: %w", err)
		}
		count++
	}

	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("iterate export rows: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return count, fmt.Errorf("flush export file: %w", err)
	}
	if err := f.Close(); err != nil {
		return count, fmt.Errorf("close export file: %w", err)
	}

	return count, nil
}

// csvField renders one view cell. NULLs become empty fields.
func csvField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
