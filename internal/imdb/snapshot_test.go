package imdb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"memdb/internal/field"
	"memdb/internal/platform"
)

func allTypesColumns() []field.Column {
	return []field.Column{
		{Name: "ID", Type: field.TypeInt32},
		{Name: "Device", Type: field.TypeMAC},
		{Name: "Name", Type: field.TypeString},
		{Name: "Seen", Type: field.TypeEpoch},
		{Name: "Active", Type: field.TypeBool},
		{Name: "Signal", Type: field.TypeFloat32},
	}
}

func allTypesRow(id int32, mac [6]byte, name string, seen uint32, active bool, signal float32) []field.Value {
	return []field.Value{
		field.Int32(id), field.MAC(mac), field.String(name),
		field.Epoch(seen), field.Bool(active), field.Float32(signal),
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	db, _ := newTestDB(t)
	path := filepath.Join(t.TempDir(), "table.snapshot")

	if err := db.CreateTable(allTypesColumns()); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}

	mac1, _ := field.ParseMAC("aa:bb:cc:dd:ee:01")
	mac2, _ := field.ParseMAC("aa:bb:cc:dd:ee:02")
	truncated := strings.Repeat("q", 300)

	rows := [][]field.Value{
		allTypesRow(1, mac1, "plain", 1700000000, true, -41.5),
		allTypesRow(2, mac2, truncated, 1700000300, false, 12.25),
		allTypesRow(3, mac1, "", 0, true, 0),
	}
	for i, row := range rows {
		if err := db.Insert(row, 0); err != nil {
			t.Fatalf("Insert %d failed: %v", i, err)
		}
	}

	if err := db.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}
	if err := db.DropTable(); err != nil {
		t.Fatalf("DropTable failed: %v", err)
	}
	if err := db.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if got := db.Count(); got != int32(len(rows)) {
		t.Fatalf("Count = %d after reload, want %d", got, len(rows))
	}

	cols := db.Columns()
	if len(cols) != len(allTypesColumns()) {
		t.Fatalf("schema has %d columns after reload, want %d", len(cols), len(allTypesColumns()))
	}
	for i, want := range allTypesColumns() {
		if cols[i] != want {
			t.Fatalf("column %d = %+v after reload, want %+v", i, cols[i], want)
		}
	}

	cells, n, err := db.Top(len(rows))
	if err != nil {
		t.Fatalf("Top failed: %v", err)
	}
	if n != len(rows) {
		t.Fatalf("Top returned %d rows, want %d", n, len(rows))
	}

	width := len(cols)
	for i, row := range rows {
		got := cells[i*width : (i+1)*width]
		if got[0].I32 != row[0].I32 || got[1].MAC != row[1].MAC ||
			got[3].Epoch != row[3].Epoch || got[4].B != row[4].B || got[5].F32 != row[5].F32 {
			t.Fatalf("row %d changed across round trip: %+v", i, got)
		}
		if got[2].S != field.Clamp(row[2].S) {
			t.Fatalf("row %d string changed across round trip (%d bytes)", i, len(got[2].S))
		}
	}

	// The truncated string round-trips at exactly MaxStringLen bytes.
	if got := cells[1*width+2].S; len(got) != field.MaxStringLen {
		t.Fatalf("truncated string reloaded as %d bytes, want %d", len(got), field.MaxStringLen)
	}
}

func TestSnapshotEmptyTableRoundTrip(t *testing.T) {
	db, _ := newTestDB(t)
	path := filepath.Join(t.TempDir(), "empty.snapshot")

	if err := db.CreateTable(idNameColumns()); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if err := db.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	fresh, _ := newTestDB(t)
	if err := fresh.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if fresh.Count() != 0 || fresh.RecordCount() != 0 {
		t.Fatalf("empty snapshot loaded with count=%d slots=%d", fresh.Count(), fresh.RecordCount())
	}
}

func TestSaveWithoutTable(t *testing.T) {
	db, _ := newTestDB(t)
	if err := db.SaveToFile(filepath.Join(t.TempDir(), "x")); !errors.Is(err, ErrNoTable) {
		t.Fatalf("expected ErrNoTable, got %v", err)
	}
}

func TestSavePurgesExpiredRecords(t *testing.T) {
	db, clock := newTestDB(t)
	path := filepath.Join(t.TempDir(), "purged.snapshot")

	if err := db.CreateTable(idNameColumns()); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if err := db.Insert([]field.Value{field.Int32(1), field.String("keep")}, 0); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := db.Insert([]field.Value{field.Int32(2), field.String("drop")}, 100); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	clock.advance(200)
	if err := db.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	// The save itself already reclaimed the expired slot.
	if got := db.RecordCount(); got != 1 {
		t.Fatalf("RecordCount = %d after save, want 1", got)
	}

	fresh, _ := newTestDB(t)
	if err := fresh.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if got := fresh.Count(); got != 1 {
		t.Fatalf("snapshot carried %d records, want 1", got)
	}
}

func TestLoadRefusesLiveTable(t *testing.T) {
	db, _ := newTestDB(t)
	path := filepath.Join(t.TempDir(), "live.snapshot")

	if err := db.CreateTable(idNameColumns()); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if err := db.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	if err := db.LoadFromFile(path); !errors.Is(err, ErrTableExists) {
		t.Fatalf("expected ErrTableExists, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	db, _ := newTestDB(t)
	if err := db.LoadFromFile(filepath.Join(t.TempDir(), "absent")); !errors.Is(err, ErrFileOpen) {
		t.Fatalf("expected ErrFileOpen, got %v", err)
	}
}

func TestLoadRejectsBadMagicAndVersion(t *testing.T) {
	dir := t.TempDir()

	badMagic := filepath.Join(dir, "magic")
	if err := os.WriteFile(badMagic, []byte("NOPE\x01\x02\x00\x00\x00\x00\x00\x00"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	db, _ := newTestDB(t)
	if err := db.LoadFromFile(badMagic); !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("bad magic: expected ErrCorruptFile, got %v", err)
	}

	badVersion := filepath.Join(dir, "version")
	if err := os.WriteFile(badVersion, []byte("IMDB\x09\x02\x00\x00\x00\x00\x00\x00"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := db.LoadFromFile(badVersion); !errors.Is(err, ErrCorruptFile) {
		t.Fatalf("bad version: expected ErrCorruptFile, got %v", err)
	}
}

func TestLoadTruncatedFileRollsBack(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "full.snapshot")

	db, _ := newTestDB(t)
	if err := db.CreateTable(allTypesColumns()); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	mac, _ := field.ParseMAC("aabbccddeeff")
	for i := int32(0); i < 3; i++ {
		if err := db.Insert(allTypesRow(i, mac, "rollback", 10, true, 1.0), 0); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	if err := db.SaveToFile(full); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	// Cut the file mid-record and at several other byte boundaries.
	for _, cut := range []int{len(data) - 3, len(data) / 2, 20} {
		truncated := filepath.Join(dir, fmt.Sprintf("cut-%d.snapshot", cut))
		if err := os.WriteFile(truncated, data[:cut], 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}

		fresh, _ := newTestDB(t)
		err := fresh.LoadFromFile(truncated)
		if !errors.Is(err, ErrFileRead) && !errors.Is(err, ErrCorruptFile) {
			t.Fatalf("cut at %d: expected ErrFileRead or ErrCorruptFile, got %v", cut, err)
		}

		// No partially loaded state may be visible.
		if fresh.Count() != 0 || fresh.RecordCount() != 0 || fresh.Columns() != nil {
			t.Fatalf("cut at %d: partial load visible", cut)
		}
		if err := fresh.CreateTable(idNameColumns()); err != nil {
			t.Fatalf("cut at %d: engine unusable after failed load: %v", cut, err)
		}
	}
}

func TestLoadRebasesTTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ttl.snapshot")

	saver, saveClock := newTestDB(t)
	if err := saver.CreateTable(idNameColumns()); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if err := saver.Insert([]field.Value{field.Int32(1), field.String("timed")}, 1000); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// 400ms pass before the save; 600ms of TTL remain on disk.
	saveClock.advance(400)
	if err := saver.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	// The loading engine's clock is unrelated; powered-off time must not
	// count against the record.
	loadClock := &fakeClock{now: 50_000}
	loader := New(
		WithClock(loadClock),
		WithFreeMemory(func() uint64 { return 1 << 30 }),
	)
	if err := loader.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if got := loader.Count(); got != 1 {
		t.Fatalf("Count = %d right after load, want 1", got)
	}
	loadClock.advance(599)
	if got := loader.Count(); got != 1 {
		t.Fatalf("Count = %d with 1ms of TTL left, want 1", got)
	}
	loadClock.advance(1)
	if got := loader.Count(); got != 0 {
		t.Fatalf("Count = %d after rebased expiry, want 0", got)
	}
}

// failStore wraps the OS store but fails every write after a byte budget,
// to prove aborted saves leave no temp file and no damaged target.
type failStore struct {
	platform.OSStore
	budget int
}

func (s *failStore) Create(path string) (io.WriteCloser, error) {
	w, err := s.OSStore.Create(path)
	if err != nil {
		return nil, err
	}
	return &failWriter{w: w, left: s.budget}, nil
}

type failWriter struct {
	w    io.WriteCloser
	left int
}

func (f *failWriter) Write(p []byte) (int, error) {
	if len(p) > f.left {
		return 0, errors.New("disk full")
	}
	f.left -= len(p)
	return f.w.Write(p)
}

func (f *failWriter) Close() error { return f.w.Close() }

func TestSaveWriteFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fail.snapshot")

	clock := &fakeClock{now: 1000}
	db := New(
		WithClock(clock),
		WithFreeMemory(func() uint64 { return 1 << 30 }),
		WithStore(&failStore{budget: 16}),
	)

	if err := db.CreateTable(idNameColumns()); err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if err := db.Insert([]field.Value{field.Int32(1), field.String("doomed")}, 0); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if err := db.SaveToFile(path); !errors.Is(err, ErrFileWrite) {
		t.Fatalf("expected ErrFileWrite, got %v", err)
	}

	// Neither the target nor any temp file may remain.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("aborted save left %d files behind: %v", len(entries), entries)
	}
}
