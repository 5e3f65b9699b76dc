package imdb

import "memdb/internal/field"

// Select returns col's value from the first live, non-expired record (in
// arena order) where whereCol equals whereVal. Returns ErrNoRecords when
// nothing matched.
func (db *DB) Select(col, whereCol string, whereVal field.Value) (field.Value, error) {
	db.mu.lock()
	defer db.mu.unlock()

	if !db.tableUp {
		return field.Value{}, ErrNoTable
	}
	if col == "" || whereCol == "" {
		return field.Value{}, ErrInvalidValue
	}

	colIdx := db.findColumnIndex(col)
	whereIdx := db.findColumnIndex(whereCol)
	if colIdx < 0 || whereIdx < 0 {
		return field.Value{}, ErrColumnNotFound
	}

	for i := range db.records {
		if !db.live(i) {
			continue
		}
		if field.Equal(db.records[i].fields[whereIdx], whereVal) {
			return db.records[i].fields[colIdx], nil
		}
	}
	return field.Value{}, ErrNoRecords
}

// SelectAll returns every column of every live, non-expired record where
// whereCol equals whereVal. The result is one flat row-major block of
// matches × columnCount cells, sized in a first counting pass so exactly
// one allocation is made. Returns (nil, 0, ErrNoRecords) when nothing
// matched.
func (db *DB) SelectAll(whereCol string, whereVal field.Value) ([]field.Value, int, error) {
	db.mu.lock()
	defer db.mu.unlock()

	if !db.tableUp {
		return nil, 0, ErrNoTable
	}
	if whereCol == "" {
		return nil, 0, ErrInvalidValue
	}

	whereIdx := db.findColumnIndex(whereCol)
	if whereIdx < 0 {
		return nil, 0, ErrColumnNotFound
	}

	// First pass: count matches to size a single allocation.
	matches := 0
	for i := range db.records {
		if db.live(i) && field.Equal(db.records[i].fields[whereIdx], whereVal) {
			matches++
		}
	}
	if matches == 0 {
		return nil, 0, ErrNoRecords
	}

	// Second pass: fill, all columns per matching record in schema order.
	out := make([]field.Value, 0, matches*len(db.columns))
	for i := range db.records {
		if db.live(i) && field.Equal(db.records[i].fields[whereIdx], whereVal) {
			out = append(out, db.records[i].fields...)
		}
	}
	return out, matches, nil
}

// Top returns the first min(n, liveCount) live, non-expired records in
// arena order, as a flat row-major block like SelectAll. The records are
// not sorted by any column: "top" means the first n survivors of the scan.
func (db *DB) Top(n int) ([]field.Value, int, error) {
	db.mu.lock()
	defer db.mu.unlock()

	if !db.tableUp {
		return nil, 0, ErrNoTable
	}
	if n < 0 {
		return nil, 0, ErrInvalidValue
	}

	liveCount := 0
	for i := range db.records {
		if db.live(i) {
			liveCount++
		}
	}
	if liveCount == 0 {
		return nil, 0, ErrNoRecords
	}

	returnCount := min(n, liveCount)
	out := make([]field.Value, 0, returnCount*len(db.columns))
	taken := 0
	for i := range db.records {
		if taken == returnCount {
			break
		}
		if db.live(i) {
			out = append(out, db.records[i].fields...)
			taken++
		}
	}
	return out, returnCount, nil
}
