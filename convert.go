package mpobj

import (
	"fmt"
	"reflect"
	"slices"
	"time"
)

// ValueBuilder is implemented by types that build their own Value. A result
// allocated outside a is copied into a.
type ValueBuilder interface {
	BuildValue(a *Arena) (Value, error)
}

// ValueConverter is implemented (on the pointer receiver) by types that
// interpret a Value themselves.
type ValueConverter interface {
	ConvertValue(v Value) error
}

// Build turns a Go value into a Value tree allocated in a.
//
// Booleans, integers and floats become primitive values. Strings become
// String; []byte and [N]byte become Binary; other slices and arrays become
// Array. Go maps become Map with entries sorted by Compare of their keys.
// Structs become an Array of their fields in declared order, taken from
// Tuple when the type implements it, and from exported fields not tagged
// `msgpack:"-"` otherwise. Ext becomes Extension and time.Time becomes a
// timestamp extension. A Value is used as is, or deep-copied when it lives
// in another arena. Nil pointers, slices, maps and interfaces become Nil.
//
// Channels, functions and complex numbers yield *UnsupportedTypeError.
func Build(a *Arena, x any) (Value, error) {
	a.mustBeLive("Build")
	b := builder{arena: a}
	return b.build(reflect.ValueOf(x), 0)
}

type builder struct {
	arena *Arena
}

func (b *builder) hook(vb ValueBuilder) (Value, error) {
	v, err := vb.BuildValue(b.arena)
	if err != nil {
		return Value{}, err
	}
	return b.arena.adopt(v), nil
}

func (b *builder) build(rv reflect.Value, depth int) (Value, error) {
	if !rv.IsValid() {
		return Value{}, nil
	}
	if depth > MaxDepth {
		return Value{}, fmt.Errorf("mpobj: Build: %w", ErrTooDeep)
	}
	a := b.arena
	typ := rv.Type()

	switch typ {
	case valueType:
		return a.adopt(rv.Interface().(Value)), nil
	case extType:
		e := rv.Interface().(Ext)
		return a.NewExt(e.Type, e.Data), nil
	case timeType:
		return a.NewTimestamp(rv.Interface().(time.Time)), nil
	}

	info := reflectType(typ)
	if info.builder {
		if isNilable(rv.Kind()) && rv.IsNil() {
			return Value{}, nil
		}
		return b.hook(rv.Interface().(ValueBuilder))
	}
	if info.ptrBuilder {
		return b.hook(addressable(rv).Addr().Interface().(ValueBuilder))
	}
	if info.tuple {
		return b.buildTuple(addressable(rv).Addr().Interface().(Tuple), depth)
	}

	switch typ.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return a.NewString(rv.String()), nil
	case reflect.Slice:
		if rv.IsNil() {
			return Value{}, nil
		}
		if typ.Elem().Kind() == reflect.Uint8 {
			return a.NewBinary(rv.Bytes()), nil
		}
		return b.buildSeq(rv, depth)
	case reflect.Array:
		if typ.Elem().Kind() == reflect.Uint8 {
			data := a.allocBytes(rv.Len())
			reflect.Copy(reflect.ValueOf(data), rv)
			return a.bytesOf(KindBinary, data), nil
		}
		return b.buildSeq(rv, depth)
	case reflect.Map:
		if rv.IsNil() {
			return Value{}, nil
		}
		return b.buildMap(rv, depth)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Value{}, nil
		}
		return b.build(rv.Elem(), depth+1)
	case reflect.Struct:
		return b.buildStruct(rv, info, depth)
	default:
		return Value{}, &UnsupportedTypeError{Type: typ}
	}
}

func (b *builder) buildSeq(rv reflect.Value, depth int) (Value, error) {
	n := rv.Len()
	items := b.arena.allocValues(n)
	for i := range n {
		item, err := b.build(rv.Index(i), depth+1)
		if err != nil {
			return Value{}, prefixPath(err, fmt.Sprintf("[%d]", i))
		}
		items[i] = item
	}
	return b.arena.arrayOf(items), nil
}

func (b *builder) buildMap(rv reflect.Value, depth int) (Value, error) {
	pairs := b.arena.allocPairs(rv.Len())
	iter := rv.MapRange()
	var i int
	for iter.Next() {
		k, err := b.build(iter.Key(), depth+1)
		if err != nil {
			return Value{}, prefixPath(err, fmt.Sprintf("[%v]", iter.Key()))
		}
		v, err := b.build(iter.Value(), depth+1)
		if err != nil {
			return Value{}, prefixPath(err, fmt.Sprintf("[%v]", iter.Key()))
		}
		pairs[i] = Pair{k, v}
		i++
	}
	slices.SortFunc(pairs, func(x, y Pair) int {
		return Compare(x.Key, y.Key)
	})
	return b.arena.mapOf(pairs), nil
}

func (b *builder) buildStruct(rv reflect.Value, info *typeInfo, depth int) (Value, error) {
	items := b.arena.allocValues(len(info.fields))
	for i, f := range info.fields {
		item, err := b.build(rv.Field(f.index), depth+1)
		if err != nil {
			return Value{}, prefixPath(err, "."+f.name)
		}
		items[i] = item
	}
	return b.arena.arrayOf(items), nil
}

func isNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// addressable returns rv itself if it can be addressed, or an addressable
// copy otherwise.
func addressable(rv reflect.Value) reflect.Value {
	if rv.CanAddr() {
		return rv
	}
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return p.Elem()
}

// As interprets v as a T. See Value.Convert for the rules.
func As[T any](v Value) (T, error) {
	var r T
	err := v.Convert(&r)
	return r, err
}

// MustAs is like As, but panics on error.
func MustAs[T any](v Value) T {
	return must(As[T](v))
}
