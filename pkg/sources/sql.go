package sources

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/tracksync/bridge/pkg/errors"
	"github.com/tracksync/bridge/pkg/types"
)

// SQLSource executes a configured query against a Postgres database. The
// query may carry two positional parameters which receive the pass
// window's start and end timestamps.
type SQLSource struct {
	ConnString string
	Query      string
}

// NewSQLSource creates a source over a connection string and query text.
func NewSQLSource(connString, query string) *SQLSource {
	return &SQLSource{ConnString: connString, Query: query}
}

// Records implements Source. One connection per acquisition run; passes
// are infrequent enough that pooling buys nothing.
func (s *SQLSource) Records(ctx context.Context, w Window) ([]types.Record, error) {
	conn, err := pgx.Connect(ctx, s.ConnString)
	if err != nil {
		return nil, errors.WrapIO("connect", "database", err)
	}
	defer func() { _ = conn.Close(ctx) }()

	var rows pgx.Rows
	if w.Since != "" {
		rows, err = conn.Query(ctx, s.Query, w.Since, w.Until)
	} else {
		rows, err = conn.Query(ctx, s.Query)
	}
	if err != nil {
		return nil, errors.WrapIO("query", "database", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var records []types.Record
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, errors.WrapIO("scan", "database", err)
		}
		rec := make(types.Record, len(fields))
		for i, field := range fields {
			if i >= len(vals) {
				break
			}
			if str, ok := stringify(vals[i]); ok {
				rec[field.Name] = str
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapIO("read", "database", err)
	}
	return records, nil
}
