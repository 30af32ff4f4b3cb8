// Package sink writes cleaned tables to PostgreSQL.
package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/datacleaner/internal/core"
)

// ErrNoColumns is returned when there is nothing to create a table from.
var ErrNoColumns = errors.New("no fields: cannot create a table without columns")

// CopyExecer is the subset of *pgxpool.Pool and pgx.Tx the sink needs.
type CopyExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// Options controls CopyTable.
type Options struct {
	// Truncate empties the table before copying.
	Truncate bool
}

// ParseIdentifier splits "schema.table" into a pgx identifier.
func ParseIdentifier(name string) (pgx.Identifier, error) {
	parts := strings.Split(strings.TrimSpace(name), ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("invalid table name %q", name)
	}
	for _, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("invalid table name %q", name)
		}
	}
	return pgx.Identifier(parts), nil
}

// CreateTableSQL returns the statement creating table with one text column
// per field.
func CreateTableSQL(table pgx.Identifier, fields []string) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = pgx.Identifier{f}.Sanitize() + " text"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table.Sanitize(), strings.Join(cols, ", "))
}

// CopyTable creates the table if needed and bulk-loads rows with COPY.
// Absent and nil values become NULL; everything else is stored as text.
func CopyTable(ctx context.Context, db CopyExecer, table string, fields []string, rows []core.Row, opts Options) (int64, error) {
	if len(fields) == 0 {
		return 0, ErrNoColumns
	}
	ident, err := ParseIdentifier(table)
	if err != nil {
		return 0, err
	}

	if _, err := db.Exec(ctx, CreateTableSQL(ident, fields)); err != nil {
		return 0, fmt.Errorf("create table %s: %w", ident.Sanitize(), err)
	}
	if opts.Truncate {
		if _, err := db.Exec(ctx, "TRUNCATE "+ident.Sanitize()); err != nil {
			return 0, fmt.Errorf("truncate %s: %w", ident.Sanitize(), err)
		}
	}

	values := make([][]any, len(rows))
	for i, row := range rows {
		rec := make([]any, len(fields))
		for j, f := range fields {
			if v, ok := row[f]; ok && v != nil {
				rec[j] = core.ValueString(v)
			}
		}
		values[i] = rec
	}

	n, err := db.CopyFrom(ctx, ident, fields, pgx.CopyFromRows(values))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", ident.Sanitize(), err)
	}
	return n, nil
}
