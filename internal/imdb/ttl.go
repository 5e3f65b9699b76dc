package imdb

// MaxTTL is the maximum time-to-live accepted by Insert: 30 days in
// milliseconds.
const MaxTTL = 30 * 24 * 60 * 60 * 1000

// isExpired reports whether a record with the given absolute expiry stamp
// has expired. An expiry of 0 means the record never expires. The signed
// difference keeps the comparison correct across the 32-bit clock
// wraparound, provided the span between now and expiry stays under half the
// 32-bit range (~24.8 days).
func (db *DB) isExpired(expiry uint32) bool {
	if expiry == 0 {
		return false
	}
	return int32(db.clock.NowMillis()-expiry) >= 0
}

// live reports whether the record at index i should be visible to
// filtering: occupied and not expired.
func (db *DB) live(i int) bool {
	return db.records[i].valid && !db.isExpired(db.records[i].expiry)
}

// PurgeExpired invalidates every expired record, releases its field
// storage, and compacts the arena. A no-op when no table exists.
func (db *DB) PurgeExpired() {
	db.mu.lock()
	defer db.mu.unlock()

	if !db.tableUp {
		return
	}
	db.purgeExpiredLocked()
}

// purgeExpiredLocked is the purge body shared with SaveToFile, which must
// run it inside its own critical section.
func (db *DB) purgeExpiredLocked() {
	for i := range db.records {
		if db.records[i].valid && db.isExpired(db.records[i].expiry) {
			releaseRecord(&db.records[i])
			db.records[i].valid = false
		}
	}
	db.compact()
}
