// Package imdb implements a single-table, schema-typed, in-memory record
// store aimed at resource-constrained hosts: bounded heap, a growable record
// arena with stable compaction, TTL expiry, predicate-filtered CRUD and
// aggregate operations, and an atomically-replaced binary snapshot format.
//
// Every public operation is serialized by one coarse mutex; calls run to
// completion while holding it, including snapshot I/O. That trade-off favors
// simplicity and correctness over throughput, which is appropriate at the
// target scale of tens to low thousands of records.
package imdb

import (
	"fmt"
	"io"
	"log/slog"
	"unsafe"

	"memdb/internal/field"
	"memdb/internal/platform"
)

const (
	// defaultHeapFloor is the minimum free heap (bytes) required before
	// allocation-heavy operations proceed.
	defaultHeapFloor = 30000

	// initialCapacity is the record arena capacity allocated at table
	// creation.
	initialCapacity = 10
)

// Record is one row of the table. A record with expiry 0 never expires.
// valid == false marks a logically deleted slot pending compaction; its
// field slice has already been released and is never read except to skip.
type Record struct {
	fields []field.Value
	expiry uint32
	valid  bool
}

// DB is a single-table in-memory database engine. The zero value is not
// usable; construct instances with New.
type DB struct {
	mu guard

	columns  []field.Column
	records  []Record // len == record count; capacity managed explicitly
	capacity int
	tableUp  bool

	clock      platform.Clock
	freeMemory platform.FreeMemoryFunc
	store      platform.Store
	heapFloor  uint64
	log        *slog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithClock substitutes the millisecond clock (tests use a fake).
func WithClock(c platform.Clock) Option {
	return func(db *DB) { db.clock = c }
}

// WithFreeMemory substitutes the free-memory probe.
func WithFreeMemory(f platform.FreeMemoryFunc) Option {
	return func(db *DB) { db.freeMemory = f }
}

// WithStore substitutes the byte store used for snapshots.
func WithStore(s platform.Store) Option {
	return func(db *DB) { db.store = s }
}

// WithHeapFloor sets the minimum free heap in bytes.
func WithHeapFloor(bytes uint64) Option {
	return func(db *DB) { db.heapFloor = bytes }
}

// WithLogger sets the logger for snapshot save/load diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) { db.log = l }
}

// New creates an engine instance with no table.
func New(opts ...Option) *DB {
	db := &DB{
		clock:      platform.NewSystemClock(),
		freeMemory: platform.FreeMemory,
		store:      platform.OSStore{},
		heapFloor:  defaultHeapFloor,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// checkHeapLimit reports whether free memory is above the configured floor.
func (db *DB) checkHeapLimit() bool {
	return db.freeMemory() >= db.heapFloor
}

// findColumnIndex resolves a column name by linear scan, returning the first
// exact match or -1. Duplicate names are tolerated; the first wins.
func (db *DB) findColumnIndex(name string) int {
	for i := range db.columns {
		if db.columns[i].Name == name {
			return i
		}
	}
	return -1
}

// CreateTable creates the table. Exactly one table may exist per engine
// instance; columns are immutable afterwards and their order defines field
// order in every record and in the snapshot file.
func (db *DB) CreateTable(columns []field.Column) error {
	db.mu.lock()
	defer db.mu.unlock()

	if db.tableUp {
		return ErrTableExists
	}
	if len(columns) == 0 {
		return ErrInvalidValue
	}
	for _, c := range columns {
		if c.Name == "" || len(c.Name) > field.MaxColumnName {
			return fmt.Errorf("%w: column name %q", ErrInvalidValue, c.Name)
		}
		if !c.Type.Valid() {
			return fmt.Errorf("%w: column %q", ErrInvalidType, c.Name)
		}
	}
	if !db.checkHeapLimit() {
		return ErrHeapLimit
	}

	// Copy definitions verbatim. Duplicate names are permitted (ambiguous
	// to callers); findColumnIndex resolves to the first match.
	db.columns = make([]field.Column, len(columns))
	copy(db.columns, columns)

	db.records = make([]Record, 0, initialCapacity)
	db.capacity = initialCapacity
	db.tableUp = true
	return nil
}

// DropTable releases every record's field storage, then the record and
// column arrays, resetting the engine to the unpopulated state.
func (db *DB) DropTable() error {
	db.mu.lock()
	defer db.mu.unlock()

	if !db.tableUp {
		return ErrNoTable
	}
	db.reset()
	return nil
}

// reset clears all table state. Callers hold the mutex.
func (db *DB) reset() {
	for i := range db.records {
		releaseRecord(&db.records[i])
	}
	db.records = nil
	db.columns = nil
	db.capacity = 0
	db.tableUp = false
}

// Columns returns a copy of the table schema, or nil if no table exists.
func (db *DB) Columns() []field.Column {
	db.mu.lock()
	defer db.mu.unlock()

	if !db.tableUp {
		return nil
	}
	cols := make([]field.Column, len(db.columns))
	copy(cols, db.columns)
	return cols
}

// RecordCount returns the number of occupied arena slots, including slots
// invalidated but not yet compacted away.
func (db *DB) RecordCount() int {
	db.mu.lock()
	defer db.mu.unlock()
	return len(db.records)
}

// MemoryUsage estimates the bytes held by the table: column definitions,
// the record arena at full capacity, per-record field arrays, and string
// payloads.
func (db *DB) MemoryUsage() uint64 {
	db.mu.lock()
	defer db.mu.unlock()

	total := uint64(len(db.columns)) * uint64(unsafe.Sizeof(field.Column{}))
	total += uint64(db.capacity) * uint64(unsafe.Sizeof(Record{}))

	for i := range db.records {
		if db.records[i].fields == nil {
			continue
		}
		total += uint64(len(db.columns)) * uint64(unsafe.Sizeof(field.Value{}))
		for j := range db.columns {
			if db.columns[j].Type == field.TypeString {
				total += uint64(len(db.records[i].fields[j].S)) + 1
			}
		}
	}
	return total
}

// ThreadSafe reports whether operations are serialized by the engine's
// mutual-exclusion guard.
func (db *DB) ThreadSafe() bool {
	return db.mu.ok()
}
