package mpobj

import (
	"reflect"
	"sync"
	"time"
)

var typeInfoCache sync.Map

var (
	valueType          = reflect.TypeOf(Value{})
	extType            = reflect.TypeOf(Ext{})
	timeType           = reflect.TypeOf(time.Time{})
	valueBuilderType   = reflect.TypeOf((*ValueBuilder)(nil)).Elem()
	valueConverterType = reflect.TypeOf((*ValueConverter)(nil)).Elem()
	tupleType          = reflect.TypeOf((*Tuple)(nil)).Elem()
)

// typeInfo caches what Build and Convert need to know about a Go type.
type typeInfo struct {
	typ reflect.Type

	builder    bool // T implements ValueBuilder
	ptrBuilder bool // only *T implements ValueBuilder
	converter  bool // *T implements ValueConverter
	tuple      bool // *T implements Tuple

	fields []structField // exported fields of a struct in declared order
}

type structField struct {
	index int
	name  string
}

func reflectType(typ reflect.Type) *typeInfo {
	if v, ok := typeInfoCache.Load(typ); ok {
		return v.(*typeInfo)
	}
	info := reflectTypeWithoutCache(typ)
	actual, _ := typeInfoCache.LoadOrStore(typ, info)
	return actual.(*typeInfo)
}

func reflectTypeWithoutCache(typ reflect.Type) *typeInfo {
	info := &typeInfo{typ: typ}
	ptr := reflect.PointerTo(typ)
	if typ.Kind() != reflect.Interface {
		info.builder = typ.Implements(valueBuilderType)
		info.ptrBuilder = !info.builder && ptr.Implements(valueBuilderType)
		info.converter = ptr.Implements(valueConverterType)
		info.tuple = ptr.Implements(tupleType)
	}
	if typ.Kind() == reflect.Struct && !info.tuple {
		n := typ.NumField()
		for i := 0; i < n; i++ {
			f := typ.Field(i)
			if !f.IsExported() || f.Tag.Get("msgpack") == "-" {
				continue
			}
			info.fields = append(info.fields, structField{index: i, name: f.Name})
		}
	}
	return info
}
