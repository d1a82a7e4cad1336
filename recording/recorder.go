// Package recording stores the estimates of a run into a database, so that
// they can be inspected after the run finishes.
package recording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DefaultBatchSize is the number of buffered entries that triggers a flush.
const DefaultBatchSize = 100000

// DataRecorder is a backend that can record and store data.
type DataRecorder interface {
	// CreateTable creates a new table with the fields of a sample struct.
	CreateTable(tableName string, sampleEntry any)

	// InsertData buffers an entry of a table that already exists.
	InsertData(tableName string, entry any)

	// ListTables returns the names of all the tables.
	ListTables() []string

	// Flush writes all the buffered entries into the database.
	Flush()

	// Close flushes and closes the database.
	Close() error
}

// Open creates a recorder from a target. Targets that start with
// "clickhouse://" are ClickHouse servers. Anything else names an SQLite file,
// without the .sqlite3 extension. An empty target uses a unique file name.
func Open(target string) (DataRecorder, error) {
	if strings.HasPrefix(target, "clickhouse://") {
		return NewClickHouse(target, DefaultBatchSize)
	}

	return New(target)
}

// New creates a recorder that writes into a new SQLite file.
func New(path string) (DataRecorder, error) {
	w := &sqliteWriter{
		dbName:    path,
		batchSize: DefaultBatchSize,
		tables:    make(map[string]*table),
	}

	if err := w.init(); err != nil {
		return nil, err
	}

	atexit.Register(func() { w.Flush() })

	return w, nil
}

// NewWithDB creates a recorder that writes into an open database.
func NewWithDB(db *sql.DB) DataRecorder {
	w := &sqliteWriter{
		DB:        db,
		batchSize: DefaultBatchSize,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

// sqliteWriter is the writer that writes data into an SQLite database.
type sqliteWriter struct {
	*sql.DB

	mu         sync.Mutex
	dbName     string
	tables     map[string]*table
	batchSize  int
	entryCount int
}

func (w *sqliteWriter) init() error {
	if w.dbName == "" {
		w.dbName = "akitapower_recording_" + xid.New().String()
	}

	filename := w.dbName + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return err
	}

	w.DB = db

	return nil
}

func isAllowedKind(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func checkStructFields(entry any) error {
	t := reflect.TypeOf(entry)
	if t == nil || t.Kind() != reflect.Struct {
		return errors.New("entry must be a struct")
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || !isAllowedKind(field.Type.Kind()) {
			return fmt.Errorf("field %s of %s cannot be recorded",
				field.Name, t.Name())
		}
	}

	return nil
}

func (w *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	if err := checkStructFields(sampleEntry); err != nil {
		panic(err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	fields := strings.Join(structs.Names(sampleEntry), ", \n\t")
	w.mustExecute(`CREATE TABLE ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`)

	w.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
	}
}

func (w *sqliteWriter) InsertData(tableName string, entry any) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, exists := w.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != t.structType {
		panic(fmt.Sprintf("entry of type %T does not fit table %s",
			entry, tableName))
	}

	t.entries = append(t.entries, entry)

	w.entryCount++
	if w.entryCount >= w.batchSize {
		w.flush()
	}
}

func (w *sqliteWriter) ListTables() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	tables := make([]string, 0, len(w.tables))
	for t := range w.tables {
		tables = append(tables, t)
	}

	return tables
}

func (w *sqliteWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.flush()
}

func (w *sqliteWriter) flush() {
	if w.entryCount == 0 {
		return
	}

	w.mustExecute("BEGIN TRANSACTION")
	defer w.mustExecute("COMMIT TRANSACTION")

	for tableName, t := range w.tables {
		if len(t.entries) == 0 {
			continue
		}

		stmt := w.prepareInsert(tableName, t.entries[0])

		for _, entry := range t.entries {
			if _, err := stmt.Exec(structs.Values(entry)...); err != nil {
				panic(err)
			}
		}

		t.entries = nil

		stmt.Close()
	}

	w.entryCount = 0
}

func (w *sqliteWriter) Close() error {
	w.Flush()
	return w.DB.Close()
}

func (w *sqliteWriter) mustExecute(query string) sql.Result {
	res, err := w.Exec(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}

func (w *sqliteWriter) prepareInsert(tableName string, entry any) *sql.Stmt {
	n := structs.Names(entry)
	for i := range n {
		n[i] = "?"
	}

	stmt, err := w.Prepare("INSERT INTO " + tableName +
		" VALUES (" + strings.Join(n, ", ") + ")")
	if err != nil {
		panic(err)
	}

	return stmt
}
