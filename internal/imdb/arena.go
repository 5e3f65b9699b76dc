package imdb

import "math"

// grow doubles the arena capacity. It fails with ErrHeapLimit when free
// memory is below the floor, and with ErrOutOfMemory when doubling would
// overflow the platform int.
func (db *DB) grow() error {
	if !db.checkHeapLimit() {
		return ErrHeapLimit
	}
	if db.capacity > math.MaxInt/2 {
		return ErrOutOfMemory
	}

	newCapacity := db.capacity * 2
	grown := make([]Record, len(db.records), newCapacity)
	copy(grown, db.records)
	db.records = grown
	db.capacity = newCapacity
	return nil
}

// releaseRecord drops a record's field storage. Safe to call on a record
// whose fields are already released.
func releaseRecord(r *Record) {
	r.fields = nil
}

// compact removes invalidated slots with a single forward pass, preserving
// the relative order of survivors. Vacated slots are cleared so no released
// field slice stays reachable through a stale entry, then the arena is
// truncated to the live count. Capacity is retained.
func (db *DB) compact() {
	write := 0
	for read := 0; read < len(db.records); read++ {
		if !db.records[read].valid {
			continue
		}
		if write != read {
			db.records[write] = db.records[read]
			db.records[read].fields = nil
			db.records[read].valid = false
		}
		write++
	}
	for i := write; i < len(db.records); i++ {
		db.records[i] = Record{}
	}
	db.records = db.records[:write]
}
