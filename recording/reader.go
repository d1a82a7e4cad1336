package recording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
)

// QueryParams narrows down a query.
type QueryParams struct {
	// Where is the WHERE clause without the keyword, for example
	// "Estimator = ? AND Quantity = ?".
	Where string
	Args  []any

	// OrderBy is the ORDER BY clause without the keywords.
	OrderBy string

	// Limit of 0 returns all the rows.
	Limit  int
	Offset int
}

// Reader reads back the rows of a recording.
type Reader struct {
	db      *sql.DB
	typeMap map[string]reflect.Type
}

// NewReader opens an SQLite recording. The estimate, tool invocation, and
// exec_info tables are mapped.
func NewReader(filename string) (*Reader, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, err
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a reader on an open database.
func NewReaderWithDB(db *sql.DB) *Reader {
	r := &Reader{
		db:      db,
		typeMap: make(map[string]reflect.Type),
	}

	r.MapTable(EstimateTable, EstimateEntry{})
	r.MapTable(InvocationTable, InvocationEntry{})
	r.MapTable(ExecInfoTable, ExecInfo{})

	return r
}

// MapTable tells the reader which struct the rows of a table scan into.
func (r *Reader) MapTable(tableName string, sampleEntry any) {
	r.typeMap[tableName] = reflect.TypeOf(sampleEntry)
}

// Query returns pointers to the structs of the matching rows, together with
// the number of rows that match without the limit.
func (r *Reader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	structType, ok := r.typeMap[tableName]
	if !ok {
		return nil, 0, fmt.Errorf("no mapping found for table: %s", tableName)
	}

	query := "SELECT * FROM " + tableName
	countQuery := "SELECT COUNT(*) FROM " + tableName

	if params.Where != "" {
		query += " WHERE " + params.Where
		countQuery += " WHERE " + params.Where
	}

	if params.OrderBy != "" {
		query += " ORDER BY " + params.OrderBy
	}

	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", params.Limit)
		if params.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", params.Offset)
		}
	}

	var total int

	err := r.db.QueryRowContext(ctx, countQuery, params.Args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, query, params.Args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := scanRows(rows, structType)
	if err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

// Estimates returns all the recorded estimates in insertion order.
func (r *Reader) Estimates(ctx context.Context) ([]EstimateEntry, error) {
	rows, _, err := r.Query(ctx, EstimateTable, QueryParams{OrderBy: "rowid"})
	if err != nil {
		return nil, err
	}

	entries := make([]EstimateEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, *row.(*EstimateEntry))
	}

	return entries, nil
}

// Close closes the database.
func (r *Reader) Close() error {
	return r.db.Close()
}

func scanRows(rows *sql.Rows, structType reflect.Type) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	fieldMap := make(map[string]int, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		fieldMap[structType.Field(i).Name] = i
	}

	var results []any

	for rows.Next() {
		structPtr := reflect.New(structType)
		structVal := structPtr.Elem()
		targets := make([]any, len(columns))

		for i, colName := range columns {
			if idx, ok := fieldMap[colName]; ok {
				targets[i] = structVal.Field(idx).Addr().Interface()
			} else {
				var placeholder any
				targets[i] = &placeholder
			}
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		results = append(results, structPtr.Interface())
	}

	return results, rows.Err()
}
