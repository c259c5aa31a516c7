package mpobj

import (
	"fmt"
	"math"
	"reflect"
)

// maxExactFloat is the largest magnitude up to which every integer has an
// exact float64 representation.
const maxExactFloat = 1 << 53

// Convert stores v into the Go value ptr points to.
//
// Integer targets of any width and signedness accept both integer kinds when
// the number fits, and fail with an out-of-range *TypeError otherwise. Float
// targets accept Double, and integers within ±2^53. Strings accept String and
// Binary, []byte accepts Binary and String. Slices and Go maps need Array and
// Map, and other scalar kinds are a mismatch. Nil is the exception: it sets
// slices, maps and pointers to nil, so nil survives a Build round trip.
// Structs need an Array with one element per field, see Build. Pointers are
// allocated as needed. An empty interface receives
// nil, bool, uint64, int64, float64, string, []byte, Ext, []any or
// map[any]any. A Value target receives v itself, still owned by its arena.
//
// Every failure is a *TypeError (matching ErrTypeMismatch) or an
// *UnsupportedTypeError naming the path to the offending element. On error,
// the target may be partially filled.
func (v Value) Convert(ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("mpobj: Convert needs a non-nil pointer, got %T", ptr)
	}
	return convert(v, rv.Elem(), 0)
}

func convert(v Value, dst reflect.Value, depth int) error {
	if depth > MaxDepth {
		return fmt.Errorf("mpobj: Convert: %w", ErrTooDeep)
	}
	if v.kind.IsCompound() {
		v.mustBeLive("Convert")
	}
	typ := dst.Type()

	switch typ {
	case valueType:
		dst.Set(reflect.ValueOf(v))
		return nil
	case extType:
		if v.kind != KindExtension {
			return typeErr(KindExtension.String(), v, typ)
		}
		dst.Set(reflect.ValueOf(Ext{Type: v.ext, Data: append([]byte{}, v.data...)}))
		return nil
	case timeType:
		t, err := v.Time()
		if err != nil {
			return err
		}
		dst.Set(reflect.ValueOf(t))
		return nil
	}

	info := reflectType(typ)
	if info.converter {
		return dst.Addr().Interface().(ValueConverter).ConvertValue(v)
	}
	if info.tuple {
		return convertTuple(v, dst.Addr().Interface().(Tuple), typ, depth)
	}

	switch typ.Kind() {
	case reflect.Bool:
		if v.kind != KindBoolean {
			return typeErr(KindBoolean.String(), v, typ)
		}
		dst.SetBool(v.num != 0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch v.kind {
		case KindPositiveInteger:
			if v.num > math.MaxInt64 || dst.OverflowInt(int64(v.num)) {
				return rangeErr(v, typ)
			}
		case KindNegativeInteger:
			if dst.OverflowInt(int64(v.num)) {
				return rangeErr(v, typ)
			}
		default:
			return typeErr("integer", v, typ)
		}
		dst.SetInt(int64(v.num))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		switch v.kind {
		case KindPositiveInteger:
			if dst.OverflowUint(v.num) {
				return rangeErr(v, typ)
			}
		case KindNegativeInteger:
			return rangeErr(v, typ)
		default:
			return typeErr("integer", v, typ)
		}
		dst.SetUint(v.num)
	case reflect.Float32, reflect.Float64:
		var f float64
		switch v.kind {
		case KindDouble:
			f = math.Float64frombits(v.num)
		case KindPositiveInteger:
			if v.num > maxExactFloat {
				return rangeErr(v, typ)
			}
			f = float64(v.num)
		case KindNegativeInteger:
			if int64(v.num) < -maxExactFloat {
				return rangeErr(v, typ)
			}
			f = float64(int64(v.num))
		default:
			return typeErr("double or integer", v, typ)
		}
		if dst.OverflowFloat(f) {
			return rangeErr(v, typ)
		}
		dst.SetFloat(f)
	case reflect.String:
		if v.kind != KindString && v.kind != KindBinary {
			return typeErr("string or binary", v, typ)
		}
		dst.SetString(string(v.data))
	case reflect.Slice:
		if v.kind == KindNil {
			dst.SetZero()
			return nil
		}
		if typ.Elem().Kind() == reflect.Uint8 {
			if v.kind != KindBinary && v.kind != KindString {
				return typeErr("binary or string", v, typ)
			}
			b := reflect.MakeSlice(typ, len(v.data), len(v.data))
			reflect.Copy(b, reflect.ValueOf(v.data))
			dst.Set(b)
			return nil
		}
		if v.kind != KindArray {
			return typeErr(KindArray.String(), v, typ)
		}
		s := reflect.MakeSlice(typ, len(v.items), len(v.items))
		for i, item := range v.items {
			if err := convert(item, s.Index(i), depth+1); err != nil {
				return prefixPath(err, fmt.Sprintf("[%d]", i))
			}
		}
		dst.Set(s)
	case reflect.Array:
		n := typ.Len()
		if typ.Elem().Kind() == reflect.Uint8 {
			if v.kind != KindBinary && v.kind != KindString {
				return typeErr("binary or string", v, typ)
			}
			if len(v.data) != n {
				return &TypeError{Want: fmt.Sprintf("%d bytes", n), Got: v.kind, Type: typ, Err: fmt.Errorf("got %d bytes", len(v.data))}
			}
			reflect.Copy(dst, reflect.ValueOf(v.data))
			return nil
		}
		items, err := arrayOfArity(v, n, typ)
		if err != nil {
			return err
		}
		for i, item := range items {
			if err := convert(item, dst.Index(i), depth+1); err != nil {
				return prefixPath(err, fmt.Sprintf("[%d]", i))
			}
		}
	case reflect.Map:
		if v.kind == KindNil {
			dst.SetZero()
			return nil
		}
		if v.kind != KindMap {
			return typeErr(KindMap.String(), v, typ)
		}
		m := reflect.MakeMapWithSize(typ, len(v.pairs))
		for i, p := range v.pairs {
			k := reflect.New(typ.Key()).Elem()
			var err error
			if typ.Key().Kind() == reflect.Interface && typ.Key().NumMethod() == 0 {
				var x any
				x, err = naturalKey(p.Key)
				if err == nil && x != nil {
					k.Set(reflect.ValueOf(x))
				}
			} else {
				err = convert(p.Key, k, depth+1)
			}
			if err != nil {
				return prefixPath(err, fmt.Sprintf("[key %d]", i))
			}
			e := reflect.New(typ.Elem()).Elem()
			if err := convert(p.Val, e, depth+1); err != nil {
				return prefixPath(err, fmt.Sprintf("[%v]", p.Key))
			}
			m.SetMapIndex(k, e)
		}
		dst.Set(m)
	case reflect.Pointer:
		if v.kind == KindNil {
			dst.SetZero()
			return nil
		}
		if dst.IsNil() {
			dst.Set(reflect.New(typ.Elem()))
		}
		return convert(v, dst.Elem(), depth+1)
	case reflect.Interface:
		if typ.NumMethod() != 0 {
			return &UnsupportedTypeError{Type: typ}
		}
		x, err := natural(v, depth)
		if err != nil {
			return err
		}
		if x == nil {
			dst.SetZero()
		} else {
			dst.Set(reflect.ValueOf(x))
		}
	case reflect.Struct:
		return convertStruct(v, dst, info, depth)
	default:
		return &UnsupportedTypeError{Type: typ}
	}
	return nil
}

func rangeErr(v Value, typ reflect.Type) error {
	return &TypeError{Want: fmt.Sprintf("number within %v range", typ), Got: v.kind, Type: typ, Err: errOutOfRange(v)}
}

var anyMapType = reflect.TypeOf(map[any]any(nil))

// natural returns the heap Go value that best represents v.
func natural(v Value, depth int) (any, error) {
	if depth > MaxDepth {
		return nil, fmt.Errorf("mpobj: Convert: %w", ErrTooDeep)
	}
	switch v.kind {
	case KindNil:
		return nil, nil
	case KindBoolean:
		return v.num != 0, nil
	case KindPositiveInteger:
		return v.num, nil
	case KindNegativeInteger:
		return int64(v.num), nil
	case KindDouble:
		return math.Float64frombits(v.num), nil
	case KindString:
		return string(v.data), nil
	case KindBinary:
		return append([]byte{}, v.data...), nil
	case KindExtension:
		return Ext{Type: v.ext, Data: append([]byte{}, v.data...)}, nil
	case KindArray:
		r := make([]any, len(v.items))
		for i, item := range v.items {
			x, err := natural(item, depth+1)
			if err != nil {
				return nil, prefixPath(err, fmt.Sprintf("[%d]", i))
			}
			r[i] = x
		}
		return r, nil
	case KindMap:
		r := make(map[any]any, len(v.pairs))
		for i, p := range v.pairs {
			k, err := naturalKey(p.Key)
			if err != nil {
				return nil, prefixPath(err, fmt.Sprintf("[key %d]", i))
			}
			x, err := natural(p.Val, depth+1)
			if err != nil {
				return nil, prefixPath(err, fmt.Sprintf("[%v]", p.Key))
			}
			r[k] = x
		}
		return r, nil
	default:
		panic("unreachable")
	}
}

// naturalKey is like natural, but only allows kinds usable as Go map keys.
// Binary keys become strings.
func naturalKey(v Value) (any, error) {
	switch v.kind {
	case KindString, KindBinary:
		return string(v.data), nil
	case KindArray, KindMap, KindExtension:
		return nil, &TypeError{Want: "scalar or string map key", Got: v.kind, Type: anyMapType}
	default:
		return natural(v, 0)
	}
}
