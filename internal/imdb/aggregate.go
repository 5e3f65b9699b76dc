package imdb

import (
	"fmt"

	"memdb/internal/field"
)

// Count returns the number of live, non-expired records. Unlike the other
// operations it has no error channel: it returns 0 when no table exists.
func (db *DB) Count() int32 {
	db.mu.lock()
	defer db.mu.unlock()

	if !db.tableUp {
		return 0
	}

	var n int32
	for i := range db.records {
		if db.live(i) {
			n++
		}
	}
	return n
}

// CountWhere returns the number of live, non-expired records where whereCol
// equals whereVal. Returns 0 when no table exists or the column does not
// resolve.
func (db *DB) CountWhere(whereCol string, whereVal field.Value) int32 {
	db.mu.lock()
	defer db.mu.unlock()

	if !db.tableUp || whereCol == "" {
		return 0
	}
	whereIdx := db.findColumnIndex(whereCol)
	if whereIdx < 0 {
		return 0
	}

	var n int32
	for i := range db.records {
		if db.live(i) && field.Equal(db.records[i].fields[whereIdx], whereVal) {
			n++
		}
	}
	return n
}

// Min returns the smallest value of a numeric column (INT32, EPOCH or
// FLOAT32) across live, non-expired records. Ties go to the first record
// encountered. Returns ErrNoRecords on an empty table.
func (db *DB) Min(col string) (field.Value, error) {
	return db.extreme(col, field.OpLess)
}

// Max returns the largest value of a numeric column across live,
// non-expired records, with first-encountered-wins ties.
func (db *DB) Max(col string) (field.Value, error) {
	return db.extreme(col, field.OpGreater)
}

// extreme runs one linear scan tracking the best candidate under a strict
// ordering operator, so the first of equal values wins.
func (db *DB) extreme(col string, op field.Operator) (field.Value, error) {
	db.mu.lock()
	defer db.mu.unlock()

	if !db.tableUp {
		return field.Value{}, ErrNoTable
	}
	if col == "" {
		return field.Value{}, ErrInvalidValue
	}

	colIdx := db.findColumnIndex(col)
	if colIdx < 0 {
		return field.Value{}, ErrColumnNotFound
	}

	colType := db.columns[colIdx].Type
	if colType != field.TypeInt32 && colType != field.TypeEpoch && colType != field.TypeFloat32 {
		return field.Value{}, fmt.Errorf("%w: aggregate on %s column %q", ErrInvalidType, colType, col)
	}

	var best field.Value
	found := false
	for i := range db.records {
		if !db.live(i) {
			continue
		}
		v := db.records[i].fields[colIdx]
		if !found {
			best = v
			found = true
			continue
		}
		if better, _ := field.Compare(v, best, op); better {
			best = v
		}
	}

	if !found {
		return field.Value{}, ErrNoRecords
	}
	return best, nil
}
