package datarecording

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrNoTable is returned when a page is requested from a table that the
// database does not hold.
var ErrNoTable = errors.New("no such table")

// Page selects a window of rows from a trace table.
type Page struct {
	// Filter is an SQL condition, e.g. "PC >= ? AND Number = ?".
	Filter string
	Args   []any

	// Order is an SQL ordering, e.g. "Cycle DESC". Rows come in insertion
	// order when it is empty.
	Order string

	// Limit caps the number of rows. Zero returns every row.
	Limit  int
	Offset int
}

// Rows is one page of a table. Total counts every row that passes the
// filter, not only the ones in the page.
type Rows struct {
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
	Values  [][]any  `json:"values"`
	Total   int      `json:"total"`
}

// Get returns the value of a column in row i, or nil if the column does not
// exist.
func (r Rows) Get(i int, column string) any {
	c := slices.Index(r.Columns, column)
	if c < 0 {
		return nil
	}

	return r.Values[i][c]
}

// Reader pages through the tables of a trace database. It does not need the
// record types; every column comes back as the SQLite value.
type Reader struct {
	db *sql.DB
}

// OpenReader opens a database written by a DataRecorder. The ".sqlite3"
// suffix is added when path does not carry it.
func OpenReader(path string) (*Reader, error) {
	if !strings.HasSuffix(path, ".sqlite3") {
		path += ".sqlite3"
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a Reader on an open database.
func NewReaderWithDB(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Tables lists the tables in the database, sorted.
func (r *Reader) Tables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		names = append(names, name)
	}

	return names, rows.Err()
}

// Read returns one page of a table.
func (r *Reader) Read(ctx context.Context, table string, p Page) (Rows, error) {
	out := Rows{Table: table}

	tables, err := r.Tables(ctx)
	if err != nil {
		return out, err
	}

	if !slices.Contains(tables, table) {
		return out, fmt.Errorf("%w: %s", ErrNoTable, table)
	}

	where := ""
	if p.Filter != "" {
		where = " WHERE " + p.Filter
	}

	from := fmt.Sprintf(`FROM "%s"%s`, table, where)

	err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) "+from, p.Args...).
		Scan(&out.Total)
	if err != nil {
		return out, fmt.Errorf("counting %s: %w", table, err)
	}

	query := "SELECT * " + from
	if p.Order != "" {
		query += " ORDER BY " + p.Order
	} else {
		query += " ORDER BY rowid"
	}

	if p.Limit > 0 || p.Offset > 0 {
		limit := p.Limit
		if limit <= 0 {
			limit = -1
		}

		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, p.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, p.Args...)
	if err != nil {
		return out, fmt.Errorf("reading %s: %w", table, err)
	}
	defer rows.Close()

	if out.Columns, err = rows.Columns(); err != nil {
		return out, err
	}

	for rows.Next() {
		vals := make([]any, len(out.Columns))
		dest := make([]any, len(vals))

		for i := range vals {
			dest[i] = &vals[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return out, err
		}

		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				vals[i] = string(b)
			}
		}

		out.Values = append(out.Values, vals)
	}

	return out, rows.Err()
}

// Close closes the database.
func (r *Reader) Close() error {
	return r.db.Close()
}
