// Package cdb bootstraps a namespace's snapshot from a PCM cyclist
// database (init_cdb.sqlite).
//
// The game database stores one row per cyclist in DYN_cyclist, with
// ability values in charac_i_* columns and last names in uppercase.
// Import maps those columns onto the 14 stat keys and produces a
// snapshot document ready to be written as the namespace's stats.yaml.
package cdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pelotonworks/stattrack/internal/snapshot"
	"github.com/pelotonworks/stattrack/internal/stat"
)

// statColumns maps each stat key to its DYN_cyclist column, in
// canonical key order.
var statColumns = map[string]string{
	"fla": "charac_i_plain",
	"mo":  "charac_i_mountain",
	"mm":  "charac_i_medium_mountain",
	"dh":  "charac_i_downhilling",
	"cob": "charac_i_cobble",
	"tt":  "charac_i_timetrial",
	"prl": "charac_i_prologue",
	"spr": "charac_i_sprint",
	"acc": "charac_i_acceleration",
	"end": "charac_i_endurance",
	"res": "charac_i_resistance",
	"rec": "charac_i_recuperation",
	"hil": "charac_i_hill",
	"att": "charac_i_baroudeur",
}

var titleCaser = cases.Title(language.Und)

// Import reads DYN_cyclist from the database at path and builds a
// snapshot document from it.
func Import(ctx context.Context, path string) (*snapshot.Document, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open cdb: %w", err)
	}
	defer db.Close()

	if err := checkTable(ctx, db); err != nil {
		return nil, err
	}

	columns := []string{
		"IDcyclist",
		"gene_sz_lastname",
		"gene_sz_firstname",
		"value_f_current_ability",
	}
	for _, key := range stat.Keys {
		columns = append(columns, statColumns[key])
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+strings.Join(columns, ", ")+" FROM DYN_cyclist")
	if err != nil {
		return nil, fmt.Errorf("query DYN_cyclist: %w", err)
	}
	defer rows.Close()

	doc := snapshot.New()
	for rows.Next() {
		var (
			id                  int64
			lastname, firstname sql.NullString
			firstCycling        sql.NullFloat64
			values              = make([]sql.NullFloat64, len(stat.Keys))
			scan                = []any{&id, &lastname, &firstname, &firstCycling}
		)
		for i := range values {
			scan = append(scan, &values[i])
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("scan DYN_cyclist row: %w", err)
		}

		c := &snapshot.Cyclist{
			Name:  displayName(firstname.String, lastname.String, id),
			Stats: make(map[string]float64),
		}
		if firstCycling.Valid {
			c.FirstCyclingID = strconv.FormatInt(int64(firstCycling.Float64), 10)
		}
		for i, key := range stat.Keys {
			if values[i].Valid {
				c.Stats[key] = values[i].Float64
			}
		}

		doc.Cyclists[strconv.FormatInt(id, 10)] = c
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate DYN_cyclist: %w", err)
	}

	if len(doc.Cyclists) == 0 {
		return nil, errors.New("no cyclist rows in DYN_cyclist")
	}

	return doc, nil
}

// checkTable verifies DYN_cyclist exists before querying it, so a
// wrong database file produces a readable error.
func checkTable(ctx context.Context, db *sql.DB) error {
	var name string
	err := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name='DYN_cyclist'`,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.New("table DYN_cyclist not found in database")
	}
	if err != nil {
		return fmt.Errorf("inspect cdb schema: %w", err)
	}
	return nil
}

// displayName combines the name columns. PCM databases carry last
// names in uppercase; title-case them for display. Falls back to a
// synthetic name when both columns are empty.
func displayName(firstname, lastname string, id int64) string {
	last := titleCaser.String(strings.ToLower(strings.TrimSpace(lastname)))
	name := strings.TrimSpace(strings.TrimSpace(firstname) + " " + last)
	if name == "" {
		return fmt.Sprintf("Cyclist %d", id)
	}
	return name
}
