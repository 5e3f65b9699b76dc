package imdb

import "memdb/internal/field"

// DeleteRecords invalidates every live, non-expired record where whereCol
// equals whereVal, releasing each record's field storage immediately, then
// compacts the arena. Returns ErrNoRecords when nothing matched.
func (db *DB) DeleteRecords(whereCol string, whereVal field.Value) error {
	db.mu.lock()
	defer db.mu.unlock()

	if !db.tableUp {
		return ErrNoTable
	}
	if whereCol == "" {
		return ErrInvalidValue
	}

	whereIdx := db.findColumnIndex(whereCol)
	if whereIdx < 0 {
		return ErrColumnNotFound
	}

	deleted := false
	for i := range db.records {
		if !db.live(i) {
			continue
		}
		if field.Equal(db.records[i].fields[whereIdx], whereVal) {
			releaseRecord(&db.records[i])
			db.records[i].valid = false
			deleted = true
		}
	}

	if !deleted {
		return ErrNoRecords
	}
	db.compact()
	return nil
}
