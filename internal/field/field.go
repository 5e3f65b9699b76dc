// Package field defines the typed cells that make up table records:
// the six supported data types, the tagged Value union, column metadata,
// and the comparison operators used by WHERE filtering.
package field

// MaxStringLen is the maximum stored length of a string cell, in bytes.
// Longer inputs are silently truncated; truncation is a documented storage
// policy, not an error.
const MaxStringLen = 255

// MaxColumnName is the maximum length of a column name, in bytes. The
// persisted file format stores names in a fixed 32-byte slot with a
// terminator, so longer names cannot round-trip.
const MaxColumnName = 31

// DataType represents the logical type of a value in a column.
// The numeric values are part of the persisted file format.
type DataType uint8

const (
	TypeInt32   DataType = iota // signed 32-bit integer
	TypeMAC                     // MAC address (6 bytes)
	TypeString                  // string up to 255 bytes
	TypeEpoch                   // unix timestamp (32-bit epoch)
	TypeBool                    // boolean value
	TypeFloat32                 // 32-bit floating point
)

// String returns the SQL-ish name of the data type.
func (t DataType) String() string {
	switch t {
	case TypeInt32:
		return "INT32"
	case TypeMAC:
		return "MAC"
	case TypeString:
		return "STRING"
	case TypeEpoch:
		return "EPOCH"
	case TypeBool:
		return "BOOL"
	case TypeFloat32:
		return "FLOAT32"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether t is one of the six supported types.
func (t DataType) Valid() bool {
	return t <= TypeFloat32
}

// Value represents a single cell in a table (one column in one record).
// Only the field matching Type should be read; other fields remain at their
// zero values to keep the struct compact and easy to inspect while debugging.
type Value struct {
	Type DataType

	I32   int32   // for TypeInt32
	MAC   [6]byte // for TypeMAC
	S     string  // for TypeString, at most MaxStringLen bytes
	Epoch uint32  // for TypeEpoch
	B     bool    // for TypeBool
	F32   float32 // for TypeFloat32
}

// Int32 builds an INT32 value.
func Int32(v int32) Value { return Value{Type: TypeInt32, I32: v} }

// MAC builds a MAC value from 6 raw bytes.
func MAC(b [6]byte) Value { return Value{Type: TypeMAC, MAC: b} }

// String builds a STRING value, truncating s to MaxStringLen bytes.
func String(s string) Value {
	return Value{Type: TypeString, S: Clamp(s)}
}

// Epoch builds an EPOCH value.
func Epoch(v uint32) Value { return Value{Type: TypeEpoch, Epoch: v} }

// Bool builds a BOOL value.
func Bool(v bool) Value { return Value{Type: TypeBool, B: v} }

// Float32 builds a FLOAT32 value.
func Float32(v float32) Value { return Value{Type: TypeFloat32, F32: v} }

// Clamp truncates s to MaxStringLen bytes.
func Clamp(s string) string {
	if len(s) > MaxStringLen {
		return s[:MaxStringLen]
	}
	return s
}

// Column describes metadata for a single column in a table.
type Column struct {
	Name string
	Type DataType
}

// MathOp is an arithmetic operation applied by update-with-math.
type MathOp int

const (
	MathAdd MathOp = iota
	MathSubtract
	MathMultiply
	MathDivide
	MathModulo
)
