package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/menukit/internal/menu"
)

// Filter narrows a List query. Zero fields match everything.
type Filter struct {
	Token string
	Menu  string

	// ErrorsOnly keeps dispatches that failed.
	ErrorsOnly bool

	// Limit keeps the most recent n rows; 0 keeps all.
	Limit int
}

// List returns the dispatches matching f in log order: ORDER BY seq ASC,
// id ASC. When f.Limit is set the newest rows are kept.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) List(ctx context.Context, f Filter) ([]menu.Record, error) {
	var (
		where []string
		args  []any
	)
	if f.Token != "" {
		where = append(where, "token = ?")
		args = append(args, f.Token)
	}
	if f.Menu != "" {
		where = append(where, "menu = ?")
		args = append(args, f.Menu)
	}
	if f.ErrorsOnly {
		where = append(where, "error != ''")
	}

	query := `SELECT id, token, seq, menu, element, response, target, blob_before, blob_after, deferred, error FROM dispatches`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if f.Limit > 0 {
		// Take the newest rows, then restore log order.
		query = `SELECT * FROM (` + query + ` ORDER BY seq DESC, id DESC LIMIT ?) ORDER BY seq ASC, id ASC`
		args = append(args, f.Limit)
	} else {
		query += " ORDER BY seq ASC, id ASC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	records := []menu.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispatches: %w", err)
	}
	return records, nil
}

// ReadToken returns every dispatch recorded under one correlation token.
func (s *Store) ReadToken(ctx context.Context, token string) ([]menu.Record, error) {
	return s.List(ctx, Filter{Token: token})
}

// MaxSeq returns the highest seq in the log, or 0 for an empty log. A
// dispatcher resuming an existing log starts its clock here.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM dispatches`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("query max seq: %w", err)
	}
	return seq.Int64, nil
}

// Summary counts dispatches per menu and response kind.
type Summary struct {
	Menu     string `json:"menu"`
	Response string `json:"response"`
	Count    int    `json:"count"`
}

// Summarize groups the log by menu and response, ordered by menu then
// response.
func (s *Store) Summarize(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT menu, response, COUNT(*)
		FROM dispatches
		GROUP BY menu, response
		ORDER BY menu COLLATE BINARY ASC, response COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.Menu, &sum.Response, &sum.Count); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary: %w", err)
	}
	return out, nil
}

func scanRecord(rows *sql.Rows) (menu.Record, error) {
	var (
		rec menu.Record
		id  int64
	)
	err := rows.Scan(
		&id,
		&rec.Token,
		&rec.Seq,
		&rec.Menu,
		&rec.Element,
		&rec.Response,
		&rec.Target,
		&rec.BlobBefore,
		&rec.BlobAfter,
		&rec.Deferred,
		&rec.Error,
	)
	if err != nil {
		return menu.Record{}, fmt.Errorf("scan dispatch: %w", err)
	}
	return rec, nil
}
