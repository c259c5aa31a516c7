package mpobj

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrTypeMismatch matches every *TypeError via errors.Is.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrArenaReleased is wrapped by the panics raised when a released or
	// reset arena, or a Value built in it, is used.
	ErrArenaReleased = errors.New("use of released arena")

	// ErrAllocationFailed matches every *AllocationError via errors.Is.
	ErrAllocationFailed = errors.New("arena allocation failed")

	// ErrTooDeep is returned when a Go value, a Value tree or MessagePack
	// input nests deeper than MaxDepth.
	ErrTooDeep = errors.New("nesting too deep")
)

// MaxDepth is the deepest nesting of arrays, maps, pointers and structs that
// Build, Convert and the decoder accept.
const MaxDepth = 512

// TypeError reports that a Value cannot be interpreted as the requested Go
// type, either because of its kind or because a number is out of range.
type TypeError struct {
	Want string       // kinds or range the target accepts
	Got  Kind         // kind of the Value
	Type reflect.Type // Go target type, when known
	Path string       // location inside the converted value, e.g. ".Map[0]"
	Err  error
}

func typeErr(want string, src Value, typ reflect.Type) error {
	return &TypeError{Want: want, Got: src.kind, Type: typ}
}

func (e *TypeError) Error() string {
	var buf strings.Builder
	buf.WriteString("mpobj: ")
	if e.Path != "" {
		buf.WriteString(e.Path)
		buf.WriteString(": ")
	}
	buf.WriteString("cannot convert ")
	buf.WriteString(e.Got.String())
	if e.Type != nil {
		buf.WriteString(" into ")
		buf.WriteString(e.Type.String())
	}
	buf.WriteString(", wanted ")
	buf.WriteString(e.Want)
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}

func (e *TypeError) Is(target error) bool {
	return target == ErrTypeMismatch
}

func (e *TypeError) Unwrap() error {
	return e.Err
}

func errOutOfRange(v Value) error {
	if v.kind == KindNegativeInteger {
		return fmt.Errorf("%d is out of range", int64(v.num))
	}
	if v.kind == KindDouble {
		return fmt.Errorf("%v is out of range", v.Float())
	}
	return fmt.Errorf("%d is out of range", v.num)
}

func kindList(kinds []Kind) string {
	var buf strings.Builder
	for i, k := range kinds {
		if i > 0 {
			if i == len(kinds)-1 {
				buf.WriteString(" or ")
			} else {
				buf.WriteString(", ")
			}
		}
		buf.WriteString(k.String())
	}
	return buf.String()
}

// UnsupportedTypeError is returned when a Go type has no Value mapping.
type UnsupportedTypeError struct {
	Type reflect.Type
	Path string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("mpobj: %s: unsupported type %v", e.Path, e.Type)
	}
	return fmt.Sprintf("mpobj: unsupported type %v", e.Type)
}

// prefixPath prepends seg to the path of a *TypeError or
// *UnsupportedTypeError inside err.
func prefixPath(err error, seg string) error {
	var te *TypeError
	if errors.As(err, &te) {
		te.Path = seg + te.Path
		return err
	}
	var ue *UnsupportedTypeError
	if errors.As(err, &ue) {
		ue.Path = seg + ue.Path
	}
	return err
}

// AllocationError is the panic value raised when an arena would go over its
// ArenaOptions.MaxSize. It is not returned as an error: running out of arena
// memory aborts the build, copy or decode in progress.
type AllocationError struct {
	Requested int
	Reserved  int
	Limit     int
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("mpobj: arena allocation of %d bytes failed: %d of %d bytes already reserved", e.Requested, e.Reserved, e.Limit)
}

func (e *AllocationError) Is(target error) bool {
	return target == ErrAllocationFailed
}

// DataError reports malformed MessagePack input.
type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	var buf strings.Builder
	fmt.Fprintf(&buf, "mpobj: %s at offset %d", e.Msg, e.Off)
	if e.Err != nil {
		fmt.Fprintf(&buf, ": %v", e.Err)
	}
	if n <= prefixLen+suffixLen {
		fmt.Fprintf(&buf, ": (%d) %x", n, e.Data)
	} else {
		fmt.Fprintf(&buf, ": (%d) %x...%x", n, e.Data[:prefixLen], e.Data[n-suffixLen:])
	}
	return buf.String()
}
