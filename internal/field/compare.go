package field

import "errors"

var (
	// ErrTypeMismatch is returned when the two compared values carry
	// different data types.
	ErrTypeMismatch = errors.New("compared values have different types")

	// ErrOrderUnsupported is returned when an ordering operator is applied
	// to a type that only supports equality (MAC, STRING, BOOL).
	ErrOrderUnsupported = errors.New("ordering comparison not supported for this type")
)

// Operator is a comparison operator for WHERE clauses.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpGreater
	OpLess
	OpGreaterEqual
	OpLessEqual
)

// ordering reports whether op is one of the four ordering operators.
func (op Operator) ordering() bool {
	return op != OpEqual && op != OpNotEqual
}

// Compare evaluates "fieldValue op cmp" for two values of the same type.
//
// INT32, EPOCH and FLOAT32 support the full operator set; EPOCH values are
// ordered through a signed 32-bit cast. Float comparisons follow IEEE-754
// semantics, so NaN never compares equal. MAC, STRING and BOOL support only
// equality and inequality; ordering operators are rejected rather than
// silently degraded to equality.
func Compare(fieldValue, cmp Value, op Operator) (bool, error) {
	if fieldValue.Type != cmp.Type {
		return false, ErrTypeMismatch
	}

	switch fieldValue.Type {
	case TypeInt32:
		return compareInt32(fieldValue.I32, cmp.I32, op), nil

	case TypeEpoch:
		return compareInt32(int32(fieldValue.Epoch), int32(cmp.Epoch), op), nil

	case TypeFloat32:
		a, b := fieldValue.F32, cmp.F32
		switch op {
		case OpEqual:
			return a == b, nil
		case OpNotEqual:
			return a != b, nil
		case OpGreater:
			return a > b, nil
		case OpLess:
			return a < b, nil
		case OpGreaterEqual:
			return a >= b, nil
		case OpLessEqual:
			return a <= b, nil
		}

	case TypeMAC:
		if op.ordering() {
			return false, ErrOrderUnsupported
		}
		eq := fieldValue.MAC == cmp.MAC
		if op == OpNotEqual {
			return !eq, nil
		}
		return eq, nil

	case TypeString:
		if op.ordering() {
			return false, ErrOrderUnsupported
		}
		eq := fieldValue.S == cmp.S
		if op == OpNotEqual {
			return !eq, nil
		}
		return eq, nil

	case TypeBool:
		if op.ordering() {
			return false, ErrOrderUnsupported
		}
		eq := fieldValue.B == cmp.B
		if op == OpNotEqual {
			return !eq, nil
		}
		return eq, nil
	}

	return false, nil
}

func compareInt32(a, b int32, op Operator) bool {
	switch op {
	case OpEqual:
		return a == b
	case OpNotEqual:
		return a != b
	case OpGreater:
		return a > b
	case OpLess:
		return a < b
	case OpGreaterEqual:
		return a >= b
	case OpLessEqual:
		return a <= b
	}
	return false
}

// Equal is a convenience wrapper for the equality comparison used by all
// WHERE filtering in the engine. A type mismatch counts as no match.
func Equal(fieldValue, cmp Value) bool {
	ok, err := Compare(fieldValue, cmp, OpEqual)
	return err == nil && ok
}
