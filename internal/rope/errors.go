package rope

import "fmt"

// ErrorCode identifies a class of rope failure.
type ErrorCode int

// Stable error codes - do not change values.
const (
	CodeBounds                ErrorCode = 2001 // R2001: offset/length/count out of range
	CodeSizeOverflow          ErrorCode = 2002 // R2002: result longer than Options.MaxByteLength
	CodeIncompatibleEncodings ErrorCode = 2003 // R2003: operands cannot share an encoding
)

// String returns the code as "R2001" format.
func (c ErrorCode) String() string {
	return fmt.Sprintf("R%d", int(c))
}

// Error is returned by factory operations that reject their input. All of
// them are deterministic; retrying with the same operands fails the same way.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("rope %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("rope %s %s: %s", e.Op, e.Code, e.Message)
}

// Is matches any *Error with the same code, so errors.Is(err, ErrBounds)
// works regardless of the operation or message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrBounds                = &Error{Code: CodeBounds, Message: "out of bounds"}
	ErrSizeOverflow          = &Error{Code: CodeSizeOverflow, Message: "size overflow"}
	ErrIncompatibleEncodings = &Error{Code: CodeIncompatibleEncodings, Message: "incompatible character encodings"}
)

func boundsError(op string, offset, length, size int) *Error {
	return &Error{
		Code:    CodeBounds,
		Op:      op,
		Message: fmt.Sprintf("window [%d, +%d) out of bounds for length %d", offset, length, size),
	}
}

func countError(op string, count int) *Error {
	return &Error{
		Code:    CodeBounds,
		Op:      op,
		Message: fmt.Sprintf("negative count %d", count),
	}
}

func indexError(op string, index, size int) *Error {
	return &Error{
		Code:    CodeBounds,
		Op:      op,
		Message: fmt.Sprintf("index %d out of bounds for length %d", index, size),
	}
}

func sizeOverflowError(op string, limit int) *Error {
	return &Error{
		Code:    CodeSizeOverflow,
		Op:      op,
		Message: fmt.Sprintf("result exceeds maximum byte length %d", limit),
	}
}

func incompatibleError(op string, left, right fmt.Stringer) *Error {
	return &Error{
		Code:    CodeIncompatibleEncodings,
		Op:      op,
		Message: fmt.Sprintf("incompatible character encodings: %s and %s", left, right),
	}
}
