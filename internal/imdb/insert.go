package imdb

import (
	"fmt"

	"memdb/internal/field"
)

// Insert appends one record. values must supply one value per column, in
// schema order, each matching its column's type. ttlMillis of 0 means the
// record never expires; otherwise the record expires ttlMillis from now,
// capped at MaxTTL.
//
// Validation completes before any state changes, so a failed insert never
// leaves a partial record behind.
func (db *DB) Insert(values []field.Value, ttlMillis uint32) error {
	db.mu.lock()
	defer db.mu.unlock()

	if !db.tableUp {
		return ErrNoTable
	}
	if values == nil {
		return ErrInvalidValue
	}
	if len(values) != len(db.columns) {
		return fmt.Errorf("%w: expected %d values, got %d",
			ErrColumnCountMismatch, len(db.columns), len(values))
	}
	if ttlMillis > MaxTTL {
		return fmt.Errorf("%w: ttl %dms exceeds maximum", ErrInvalidValue, ttlMillis)
	}
	for i, v := range values {
		if v.Type != db.columns[i].Type {
			return fmt.Errorf("%w: column %q expects %s, got %s",
				ErrInvalidType, db.columns[i].Name, db.columns[i].Type, v.Type)
		}
	}
	if !db.checkHeapLimit() {
		return ErrHeapLimit
	}

	if len(db.records) == db.capacity {
		if err := db.grow(); err != nil {
			return err
		}
	}

	rec := Record{fields: make([]field.Value, len(db.columns)), valid: true}
	for i, v := range values {
		rec.fields[i] = copyValue(v)
	}
	if ttlMillis > 0 {
		rec.expiry = db.clock.NowMillis() + ttlMillis
	}

	db.records = append(db.records, rec)
	return nil
}

// copyValue copies a caller-supplied value into engine-owned storage.
// String payloads are clamped to field.MaxStringLen bytes; truncation is a
// documented storage policy, not an error.
func copyValue(v field.Value) field.Value {
	if v.Type == field.TypeString {
		v.S = field.Clamp(v.S)
	}
	return v
}
