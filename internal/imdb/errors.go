package imdb

import "errors"

// Result codes. Every public operation returns one of these (possibly
// wrapped with call-site context); none of them is fatal — the caller can
// always recover by fixing input, dropping the table, or freeing memory.
var (
	// ErrOutOfMemory is returned when an allocation cannot be satisfied,
	// including when doubling the arena would overflow the platform int.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrHeapLimit is returned when free memory is below the configured
	// floor before an allocation-heavy operation starts.
	ErrHeapLimit = errors.New("heap limit exceeded")

	// ErrTableExists is returned by CreateTable and LoadFromFile when a
	// table is already live.
	ErrTableExists = errors.New("table already exists")

	// ErrNoTable is returned when an operation requires a table and none
	// exists.
	ErrNoTable = errors.New("no table exists")

	// ErrInvalidType is returned when a value's type does not match its
	// column, or a math/aggregate target column is not numeric.
	ErrInvalidType = errors.New("invalid data type")

	// ErrInvalidValue is returned for malformed arguments: empty column
	// sets, over-long column names, or a TTL beyond MaxTTL.
	ErrInvalidValue = errors.New("invalid value")

	// ErrColumnCountMismatch is returned by Insert when the value count
	// differs from the table's column count.
	ErrColumnCountMismatch = errors.New("column count mismatch")

	// ErrColumnNotFound is returned when a column name fails to resolve.
	ErrColumnNotFound = errors.New("column not found")

	// ErrInvalidOperation is returned for zero-divisor math and for saves
	// exceeding the persistable record cap.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrNoRecords reports that no record matched. It is an expected
	// "nothing happened" outcome, not a defect.
	ErrNoRecords = errors.New("no records found")

	// ErrInvalidMACFormat is returned for unparseable MAC address strings.
	ErrInvalidMACFormat = errors.New("invalid MAC address format")

	// ErrFileOpen is returned when a snapshot file cannot be opened or
	// does not exist.
	ErrFileOpen = errors.New("failed to open file")

	// ErrFileWrite is returned when writing or atomically replacing a
	// snapshot fails at any byte boundary.
	ErrFileWrite = errors.New("failed to write to file")

	// ErrFileRead is returned for short reads while loading a snapshot.
	ErrFileRead = errors.New("failed to read from file")

	// ErrCorruptFile is returned for bad magic, unsupported version, or a
	// truncated snapshot header.
	ErrCorruptFile = errors.New("corrupt or invalid file format")
)
