// Package recording persists flight events into a SQLite database. The
// recorder attaches to the state machine as a hook, so the engine itself
// stays storage-free; rows are buffered in memory and flushed in batches to
// keep the per-tick cost down.
package recording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/openavionics/flightcore/machine"
)

// A TransitionRow records one state change.
type TransitionRow struct {
	FlightID  string
	TimeS     float64
	FromState int
	ToState   int
	Kind      string
}

// A CommandRow records one fired command.
type CommandRow struct {
	FlightID string
	TimeS    float64
	StateID  int
	Target   string
	Value    string
}

const defaultBatchSize = 256

// A Recorder writes flight events into a SQLite database. It implements
// machine.Hook; register it on the machine with AcceptHook.
type Recorder struct {
	*sql.DB

	flightID  string
	dbName    string
	statement *sql.Stmt

	tables     map[string]*table
	batchSize  int
	entryCount int
}

type table struct {
	structType reflect.Type
	entries    []any
}

// New creates a Recorder writing to path + ".sqlite3" and registers a flush
// at process exit. The file must not exist yet; recording over an old
// flight's data is never acceptable.
func New(path string) (*Recorder, error) {
	r := &Recorder{
		flightID:  xid.New().String(),
		dbName:    path,
		batchSize: defaultBatchSize,
		tables:    make(map[string]*table),
	}

	if err := r.init(); err != nil {
		return nil, err
	}

	atexit.Register(func() { r.Flush() })

	return r, nil
}

// NewWithDB creates a Recorder on an already-open database, for tests.
func NewWithDB(db *sql.DB) (*Recorder, error) {
	r := &Recorder{
		DB:        db,
		flightID:  xid.New().String(),
		batchSize: defaultBatchSize,
		tables:    make(map[string]*table),
	}

	if err := r.createTables(); err != nil {
		return nil, err
	}

	atexit.Register(func() { r.Flush() })

	return r, nil
}

func (r *Recorder) init() error {
	if r.dbName == "" {
		r.dbName = "flight_" + r.flightID
	}

	filename := r.dbName + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("recording file %s already exists", filename)
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return fmt.Errorf("open recording database: %w", err)
	}

	r.DB = db

	return r.createTables()
}

func (r *Recorder) createTables() error {
	if err := r.createTable("transitions", TransitionRow{}); err != nil {
		return err
	}

	return r.createTable("commands", CommandRow{})
}

func (r *Recorder) createTable(tableName string, sampleEntry any) error {
	n := structs.Names(sampleEntry)
	fields := strings.Join(n, ", \n\t")

	createTableSQL := `CREATE TABLE ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`

	if _, err := r.Exec(createTableSQL); err != nil {
		return fmt.Errorf("create table %s: %w", tableName, err)
	}

	r.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
		entries:    []any{},
	}

	return nil
}

// FlightID returns the id tagged onto every row this recorder writes.
func (r *Recorder) FlightID() string {
	return r.flightID
}

// Func receives machine hook invocations and buffers the matching rows.
func (r *Recorder) Func(ctx machine.HookCtx) {
	switch ctx.Pos {
	case machine.HookPosTransition, machine.HookPosAbort:
		info := ctx.Item.(machine.TransitionInfo)
		r.insert("transitions", TransitionRow{
			FlightID:  r.flightID,
			TimeS:     float64(info.At),
			FromState: int(info.From.ID),
			ToState:   int(info.To.ID),
			Kind:      info.Kind.String(),
		})
	case machine.HookPosCommand:
		info := ctx.Item.(machine.CommandInfo)
		r.insert("commands", CommandRow{
			FlightID: r.flightID,
			TimeS:    float64(info.At),
			StateID:  int(info.State.ID),
			Target:   info.Command.Value.Kind.String(),
			Value:    info.Command.Value.Value.String(),
		})
	}
}

func (r *Recorder) insert(tableName string, entry any) {
	t := r.tables[tableName]
	t.entries = append(t.entries, entry)

	r.entryCount++
	if r.entryCount >= r.batchSize {
		r.Flush()
	}
}

// Flush writes all buffered rows into the database.
func (r *Recorder) Flush() {
	if r.entryCount == 0 {
		return
	}

	r.mustExecute("BEGIN TRANSACTION")
	defer r.mustExecute("COMMIT TRANSACTION")

	for tableName, t := range r.tables {
		if len(t.entries) == 0 {
			continue
		}

		r.prepareStatement(tableName, t.entries[0])

		for _, entry := range t.entries {
			v := []any{}

			values := reflect.ValueOf(entry)
			for i := 0; i < values.NumField(); i++ {
				v = append(v, values.Field(i).Interface())
			}

			if _, err := r.statement.Exec(v...); err != nil {
				panic(err)
			}
		}

		t.entries = nil

		r.statement.Close()
		r.statement = nil
	}

	r.entryCount = 0
}

func (r *Recorder) mustExecute(query string) sql.Result {
	res, err := r.Exec(query)
	if err != nil {
		fmt.Printf("Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}

func (r *Recorder) prepareStatement(tableName string, entry any) {
	n := structs.Names(entry)
	for i := 0; i < len(n); i++ {
		n[i] = "?"
	}

	entryToFill := "(" + strings.Join(n, ", ") + ")"
	sqlStr := "INSERT INTO " + tableName + " VALUES " + entryToFill

	stmt, err := r.Prepare(sqlStr)
	if err != nil {
		panic(err)
	}

	r.statement = stmt
}
