package load

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"tabkit/domain/table"
)

// LoadSQL runs a query and builds a dataset from the result set. Driver
// values map directly where their Go type is unambiguous; everything else
// falls back to string cells and the usual inference.
func LoadSQL(ctx context.Context, db *sqlx.DB, query string, args ...any) (*table.Dataset, error) {
	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("load: query returned no columns")
	}

	cells := make([][]string, len(names))
	for rows.Next() {
		record, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		for c := range names {
			cells[c] = append(cells[c], sqlCellString(record[c]))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	if len(cells[0]) == 0 {
		return nil, fmt.Errorf("load: no rows found")
	}

	columns := make([]table.Column, len(names))
	for c, name := range names {
		columns[c] = buildColumn(name, inferColumnType(cells[c], 0), cells[c])
	}
	return table.New(columns...)
}

func sqlCellString(v any) string {
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
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", t)
	}
}
