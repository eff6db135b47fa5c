package radon

import "strconv"

// Opcode identifies an operator. Operators are grouped by the Kind of
// Value they apply to; calling one against the wrong Kind yields
// ErrUnsupportedOperator rather than panicking.
type Opcode int

const (
	// Array opcodes
	OpArrayCount Opcode = iota
	OpArrayFilter
	OpArrayMap
	OpArrayReduce
	OpArrayGet
	OpArraySort
	OpArrayFlatten
	OpArrayGetFloat
	OpArrayGetInteger
	OpArrayGetString
	OpArrayGetArray
	OpArrayGetMap

	// Map opcodes
	OpMapGet
	OpMapGetArray
	OpMapGetBoolean
	OpMapGetBytes
	OpMapGetFloat
	OpMapGetInteger
	OpMapGetMap
	OpMapGetString
	OpMapKeys
	OpMapValues

	// String opcodes
	OpStringAsBoolean
	OpStringAsBytes
	OpStringAsFloat
	OpStringAsInteger
	OpStringLength
	OpStringParseJSON
	OpStringToLowercase
	OpStringToUppercase

	// Integer opcodes
	OpIntegerAbsolute
	OpIntegerAsFloat
	OpIntegerAsString
	OpIntegerGreaterThan
	OpIntegerLessThan
	OpIntegerModulo
	OpIntegerMultiply
	OpIntegerNegate
	OpIntegerSum

	// Float opcodes
	OpFloatAbsolute
	OpFloatAsString
	OpFloatGreaterThan
	OpFloatLessThan
	OpFloatModulo
	OpFloatMultiply
	OpFloatNegate
	OpFloatSum
	OpFloatRound

	// Boolean opcodes
	OpBooleanNegate
	OpBooleanAsString

	// Bytes opcodes
	OpBytesAsString
	OpBytesHash
)

// Call is one element of a Script: an opcode plus its (already-evaluated)
// argument values.
type Call struct {
	Op   Opcode
	Args []Value
}

func unsupported(kind Kind, op Opcode) Value {
	return Error(ErrUnsupportedOperator, kind.String())
}

func argCountError(want, got int) Value {
	return Error(ErrWrongArgumentsCount, strconv.Itoa(want), strconv.Itoa(got))
}
