package imdb

import (
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"

	"memdb/internal/field"
)

// Snapshot file layout (little-endian, version 1):
//
//	magic:       4 bytes "IMDB"
//	version:     uint8 (1)
//	columnCount: uint8
//	recordCount: uint16 (hard cap: 65535 persistable records)
//	saveStamp:   uint32 (clock millis at save time)
//	per column:
//	  name: 32 fixed bytes (zero padded)
//	  type: uint8
//	per record:
//	  isValid: uint8
//	  expiry:  uint32 (0 = never; else absolute stamp at save time)
//	  per field (by column type):
//	    INT32/EPOCH/FLOAT32: 4 bytes
//	    BOOL:                1 byte
//	    MAC:                 6 bytes
//	    STRING:              length uint8 + raw bytes (no terminator)
const (
	snapshotMagic   = "IMDB"
	snapshotVersion = 1

	// maxPersistRecords is the largest record count the uint16 field can
	// carry.
	maxPersistRecords = 65535
)

// SaveToFile writes the table to path with atomic-replace semantics: the
// snapshot is fully written under a temporary sibling name, then substituted
// for the target, so the target is always either the previous complete
// snapshot or the new one, never a partial write.
//
// Expired records are purged inside the same critical section before
// writing, so the snapshot never carries dead rows.
func (db *DB) SaveToFile(path string) error {
	db.mu.lock()
	defer db.mu.unlock()

	if !db.tableUp {
		return ErrNoTable
	}
	if path == "" {
		return ErrInvalidValue
	}

	db.purgeExpiredLocked()

	if len(db.records) > maxPersistRecords {
		return fmt.Errorf("%w: %d records exceed the %d snapshot cap",
			ErrInvalidOperation, len(db.records), maxPersistRecords)
	}

	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	w, err := db.store.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrFileOpen, tmp, err)
	}

	if err := db.writeSnapshot(w); err != nil {
		w.Close()
		_ = db.store.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrFileWrite, err)
	}
	if err := w.Close(); err != nil {
		_ = db.store.Remove(tmp)
		return fmt.Errorf("%w: close %s: %v", ErrFileWrite, tmp, err)
	}

	// Atomic replace: remove the old target, then rename the temp file in.
	if db.store.Exists(path) {
		if err := db.store.Remove(path); err != nil {
			_ = db.store.Remove(tmp)
			return fmt.Errorf("%w: replace %s: %v", ErrFileWrite, path, err)
		}
	}
	if err := db.store.Rename(tmp, path); err != nil {
		_ = db.store.Remove(tmp)
		return fmt.Errorf("%w: rename %s: %v", ErrFileWrite, path, err)
	}

	db.log.Debug("snapshot saved", "path", path, "records", len(db.records))
	return nil
}

func (db *DB) writeSnapshot(w io.Writer) error {
	if _, err := w.Write([]byte(snapshotMagic)); err != nil {
		return err
	}
	if err := writeU8(w, snapshotVersion); err != nil {
		return err
	}
	if err := writeU8(w, uint8(len(db.columns))); err != nil {
		return err
	}
	if err := writeU16(w, uint16(len(db.records))); err != nil {
		return err
	}
	if err := writeU32(w, db.clock.NowMillis()); err != nil {
		return err
	}

	var name [32]byte
	for _, c := range db.columns {
		name = [32]byte{}
		copy(name[:], c.Name)
		if _, err := w.Write(name[:]); err != nil {
			return err
		}
		if err := writeU8(w, uint8(c.Type)); err != nil {
			return err
		}
	}

	for i := range db.records {
		rec := &db.records[i]
		validByte := uint8(0)
		if rec.valid {
			validByte = 1
		}
		if err := writeU8(w, validByte); err != nil {
			return err
		}
		if err := writeU32(w, rec.expiry); err != nil {
			return err
		}
		for j, c := range db.columns {
			if err := writeField(w, rec.fields[j], c.Type); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeField(w io.Writer, v field.Value, t field.DataType) error {
	switch t {
	case field.TypeInt32:
		return writeU32(w, uint32(v.I32))
	case field.TypeFloat32:
		return writeU32(w, math.Float32bits(v.F32))
	case field.TypeEpoch:
		return writeU32(w, v.Epoch)
	case field.TypeMAC:
		_, err := w.Write(v.MAC[:])
		return err
	case field.TypeBool:
		b := uint8(0)
		if v.B {
			b = 1
		}
		return writeU8(w, b)
	case field.TypeString:
		s := field.Clamp(v.S)
		if err := writeU8(w, uint8(len(s))); err != nil {
			return err
		}
		_, err := w.Write([]byte(s))
		return err
	}
	return fmt.Errorf("unsupported field type %d", t)
}

// LoadFromFile reads a snapshot into an engine with no live table. Load
// never merges or overwrites in place; drop the table first. The loaded
// state is assembled off to the side and committed only once the whole file
// has been read and validated, so a failed load is never visible.
//
// Remaining TTLs are re-based against the load-time clock: time spent
// powered off does not count against a record's lifetime.
func (db *DB) LoadFromFile(path string) error {
	db.mu.lock()
	defer db.mu.unlock()

	if path == "" {
		return ErrInvalidValue
	}
	if db.tableUp {
		return ErrTableExists
	}
	if !db.store.Exists(path) {
		return fmt.Errorf("%w: %s", ErrFileOpen, path)
	}

	r, err := db.store.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFileOpen, path, err)
	}
	defer r.Close()

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil || string(magic[:]) != snapshotMagic {
		return fmt.Errorf("%w: bad magic", ErrCorruptFile)
	}
	version, err := readU8(r)
	if err != nil || version != snapshotVersion {
		return fmt.Errorf("%w: unsupported version", ErrCorruptFile)
	}
	columnCount, err := readU8(r)
	if err != nil {
		return fmt.Errorf("%w: truncated header", ErrCorruptFile)
	}
	recordCount, err := readU16(r)
	if err != nil {
		return fmt.Errorf("%w: truncated header", ErrCorruptFile)
	}
	saveStamp, err := readU32(r)
	if err != nil {
		return fmt.Errorf("%w: truncated header", ErrCorruptFile)
	}

	if !db.checkHeapLimit() {
		return ErrHeapLimit
	}

	columns := make([]field.Column, columnCount)
	var name [32]byte
	for i := range columns {
		if _, err := io.ReadFull(r, name[:]); err != nil {
			return fmt.Errorf("%w: column name: %v", ErrFileRead, err)
		}
		typeByte, err := readU8(r)
		if err != nil {
			return fmt.Errorf("%w: column type: %v", ErrFileRead, err)
		}
		t := field.DataType(typeByte)
		if !t.Valid() {
			return fmt.Errorf("%w: unknown column type %d", ErrCorruptFile, typeByte)
		}
		columns[i] = field.Column{Name: trimName(name), Type: t}
	}

	capacity := max(int(recordCount), initialCapacity)
	records := make([]Record, 0, capacity)
	now := db.clock.NowMillis()

	for i := 0; i < int(recordCount); i++ {
		rec, err := readRecord(r, columns, saveStamp, now)
		if err != nil {
			return err
		}
		records = append(records, rec)
	}

	db.columns = columns
	db.records = records
	db.capacity = capacity
	db.tableUp = true

	db.log.Debug("snapshot loaded", "path", path, "records", len(records))
	return nil
}

func readRecord(r io.Reader, columns []field.Column, saveStamp, now uint32) (Record, error) {
	var rec Record

	validByte, err := readU8(r)
	if err != nil {
		return rec, fmt.Errorf("%w: record flag: %v", ErrFileRead, err)
	}
	rec.valid = validByte != 0

	savedExpiry, err := readU32(r)
	if err != nil {
		return rec, fmt.Errorf("%w: record expiry: %v", ErrFileRead, err)
	}
	if savedExpiry != 0 {
		// Re-base the remaining lifetime onto the current clock; the
		// subtraction is wraparound-safe in uint32 arithmetic.
		rec.expiry = now + (savedExpiry - saveStamp)
	}

	fields := make([]field.Value, len(columns))
	for j, c := range columns {
		v, err := readField(r, c.Type)
		if err != nil {
			return rec, err
		}
		fields[j] = v
	}

	// Invalid slots keep their place in the arena but hold no field
	// storage; the payload above was read only to advance the stream.
	if rec.valid {
		rec.fields = fields
	}
	return rec, nil
}

func readField(r io.Reader, t field.DataType) (field.Value, error) {
	switch t {
	case field.TypeInt32:
		u, err := readU32(r)
		if err != nil {
			return field.Value{}, fmt.Errorf("%w: int32 field: %v", ErrFileRead, err)
		}
		return field.Int32(int32(u)), nil

	case field.TypeFloat32:
		u, err := readU32(r)
		if err != nil {
			return field.Value{}, fmt.Errorf("%w: float field: %v", ErrFileRead, err)
		}
		return field.Float32(math.Float32frombits(u)), nil

	case field.TypeEpoch:
		u, err := readU32(r)
		if err != nil {
			return field.Value{}, fmt.Errorf("%w: epoch field: %v", ErrFileRead, err)
		}
		return field.Epoch(u), nil

	case field.TypeMAC:
		var mac [6]byte
		if _, err := io.ReadFull(r, mac[:]); err != nil {
			return field.Value{}, fmt.Errorf("%w: mac field: %v", ErrFileRead, err)
		}
		return field.MAC(mac), nil

	case field.TypeBool:
		b, err := readU8(r)
		if err != nil {
			return field.Value{}, fmt.Errorf("%w: bool field: %v", ErrFileRead, err)
		}
		return field.Bool(b != 0), nil

	case field.TypeString:
		length, err := readU8(r)
		if err != nil {
			return field.Value{}, fmt.Errorf("%w: string length: %v", ErrFileRead, err)
		}
		if length == 0 {
			return field.String(""), nil
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return field.Value{}, fmt.Errorf("%w: string payload: %v", ErrFileRead, err)
		}
		return field.String(string(buf)), nil
	}

	return field.Value{}, fmt.Errorf("%w: unsupported field type %d", ErrCorruptFile, t)
}

// trimName cuts a fixed 32-byte name field at its first zero byte.
func trimName(name [32]byte) string {
	for i, b := range name {
		if b == 0 {
			return string(name[:i])
		}
	}
	return string(name[:])
}
