package imdb

import (
	"fmt"
	"math"

	"memdb/internal/field"
)

// Update overwrites setCol with setVal on every live, non-expired record
// where whereCol equals whereVal. Overwriting a string cell replaces its
// owned payload outright. Returns ErrNoRecords when nothing matched.
func (db *DB) Update(whereCol string, whereVal field.Value, setCol string, setVal field.Value) error {
	db.mu.lock()
	defer db.mu.unlock()

	if !db.tableUp {
		return ErrNoTable
	}
	if whereCol == "" || setCol == "" {
		return ErrInvalidValue
	}

	whereIdx := db.findColumnIndex(whereCol)
	setIdx := db.findColumnIndex(setCol)
	if whereIdx < 0 || setIdx < 0 {
		return ErrColumnNotFound
	}
	if setVal.Type != db.columns[setIdx].Type {
		return fmt.Errorf("%w: column %q expects %s, got %s",
			ErrInvalidType, setCol, db.columns[setIdx].Type, setVal.Type)
	}

	updated := false
	for i := range db.records {
		if !db.live(i) {
			continue
		}
		if field.Equal(db.records[i].fields[whereIdx], whereVal) {
			db.records[i].fields[setIdx] = copyValue(setVal)
			updated = true
		}
	}

	if !updated {
		return ErrNoRecords
	}
	return nil
}

// UpdateWithMath applies an arithmetic operation to setCol on every live,
// non-expired record where whereCol equals whereVal. The target column must
// be INT32, EPOCH or FLOAT32. Division or modulo by a zero operand fails
// with ErrInvalidOperation before any record is mutated.
func (db *DB) UpdateWithMath(whereCol string, whereVal field.Value, setCol string, op field.MathOp, operand int32) error {
	db.mu.lock()
	defer db.mu.unlock()

	if !db.tableUp {
		return ErrNoTable
	}
	if whereCol == "" || setCol == "" {
		return ErrInvalidValue
	}

	whereIdx := db.findColumnIndex(whereCol)
	setIdx := db.findColumnIndex(setCol)
	if whereIdx < 0 || setIdx < 0 {
		return ErrColumnNotFound
	}

	setType := db.columns[setIdx].Type
	if setType != field.TypeInt32 && setType != field.TypeEpoch && setType != field.TypeFloat32 {
		return fmt.Errorf("%w: math on %s column %q", ErrInvalidType, setType, setCol)
	}
	if operand == 0 && (op == field.MathDivide || op == field.MathModulo) {
		return fmt.Errorf("%w: zero divisor", ErrInvalidOperation)
	}

	updated := false
	for i := range db.records {
		if !db.live(i) {
			continue
		}
		if !field.Equal(db.records[i].fields[whereIdx], whereVal) {
			continue
		}

		cell := &db.records[i].fields[setIdx]
		switch setType {
		case field.TypeFloat32:
			cell.F32 = applyFloatMath(cell.F32, op, float32(operand))
		case field.TypeInt32:
			cell.I32 = applyIntMath(cell.I32, op, operand)
		case field.TypeEpoch:
			// Epoch math goes through the signed 32-bit view, matching
			// the comparator's ordering semantics.
			cell.Epoch = uint32(applyIntMath(int32(cell.Epoch), op, operand))
		}
		updated = true
	}

	if !updated {
		return ErrNoRecords
	}
	return nil
}

func applyIntMath(v int32, op field.MathOp, operand int32) int32 {
	switch op {
	case field.MathAdd:
		return v + operand
	case field.MathSubtract:
		return v - operand
	case field.MathMultiply:
		return v * operand
	case field.MathDivide:
		return v / operand
	case field.MathModulo:
		return v % operand
	}
	return v
}

func applyFloatMath(v float32, op field.MathOp, operand float32) float32 {
	switch op {
	case field.MathAdd:
		return v + operand
	case field.MathSubtract:
		return v - operand
	case field.MathMultiply:
		return v * operand
	case field.MathDivide:
		return v / operand
	case field.MathModulo:
		return floatModulo(v, operand)
	}
	return v
}

// floatModulo computes x - trunc(x/y)*y: truncating division, so the sign
// of the result follows the dividend, matching C fmod rather than Euclidean
// modulo.
func floatModulo(x, y float32) float32 {
	if y == 0 {
		return 0
	}
	return x - float32(math.Trunc(float64(x)/float64(y)))*y
}
