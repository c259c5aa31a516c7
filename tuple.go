package mpobj

import (
	"fmt"
	"reflect"
)

// Tuple describes the positional layout of a struct. TupleFields is called
// on a pointer and returns pointers to the fields that make up the Array
// form, in order:
//
//	func (p *Point) TupleFields() []any {
//		return []any{&p.X, &p.Y}
//	}
//
// Types that do not implement Tuple use their exported fields in declared
// order.
type Tuple interface {
	TupleFields() []any
}

func tupleField(t Tuple, i int, f any) reflect.Value {
	fv := reflect.ValueOf(f)
	if fv.Kind() != reflect.Pointer || fv.IsNil() {
		panic(fmt.Errorf("mpobj: %T.TupleFields: field %d is %T, wanted a non-nil pointer", t, i, f))
	}
	return fv.Elem()
}

func (b *builder) buildTuple(t Tuple, depth int) (Value, error) {
	fields := t.TupleFields()
	items := b.arena.allocValues(len(fields))
	for i, f := range fields {
		item, err := b.build(tupleField(t, i, f), depth+1)
		if err != nil {
			return Value{}, prefixPath(err, fmt.Sprintf("[%d]", i))
		}
		items[i] = item
	}
	return b.arena.arrayOf(items), nil
}

func convertTuple(v Value, t Tuple, typ reflect.Type, depth int) error {
	fields := t.TupleFields()
	items, err := arrayOfArity(v, len(fields), typ)
	if err != nil {
		return err
	}
	for i, f := range fields {
		if err := convert(items[i], tupleField(t, i, f), depth+1); err != nil {
			return prefixPath(err, fmt.Sprintf("[%d]", i))
		}
	}
	return nil
}

func convertStruct(v Value, dst reflect.Value, info *typeInfo, depth int) error {
	items, err := arrayOfArity(v, len(info.fields), info.typ)
	if err != nil {
		return err
	}
	for i, f := range info.fields {
		if err := convert(items[i], dst.Field(f.index), depth+1); err != nil {
			return prefixPath(err, "."+f.name)
		}
	}
	return nil
}

// arrayOfArity returns the items of v, which must be an Array of exactly n
// elements.
func arrayOfArity(v Value, n int, typ reflect.Type) ([]Value, error) {
	if v.kind != KindArray {
		return nil, typeErr(fmt.Sprintf("array of %d elements", n), v, typ)
	}
	if len(v.items) != n {
		return nil, &TypeError{Want: fmt.Sprintf("array of %d elements", n), Got: v.kind, Type: typ, Err: fmt.Errorf("got %d elements", len(v.items))}
	}
	return v.items, nil
}
