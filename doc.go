/*
Package mpobj implements the in-memory object model underneath a MessagePack
library: a variant tree of values whose variable-length payloads live in
arenas, deep copy between arenas, and checked conversion to and from Go
types.

# Values

A Value is one of ten kinds: Nil, Boolean, PositiveInteger, NegativeInteger,
Double, String, Binary, Array, Map and Extension. The first five are plain
values and work without an arena. The rest reference memory of the Arena they
were built in:

	a := mpobj.NewArena()
	defer a.Release()
	v := a.NewArray(mpobj.Int(1), a.NewString("two"))

Maps are ordered lists of pairs. Duplicate keys are kept, and equality
compares entries in stored order.

# Arenas

An Arena is a bump allocator. It never frees single allocations; Release
drops everything at once, after running finalizers registered with
AddFinalizer in reverse order. Reset does the same but keeps the memory for
reuse.

Every compound Value remembers its arena and the arena's generation. Reading
its payload after Release or Reset panics with an error wrapping
ErrArenaReleased, rather than reading freed memory. To keep a tree alive past
its arena, Copy it into another arena first. The copy shares no memory with
the source at any depth.

Running over ArenaOptions.MaxSize panics with *AllocationError. It is not a
recoverable error: the build, copy or decode in progress is abandoned.

# Conversion

Build turns Go values into a Value tree, and Value.Convert and As go the
other way. Structs map to Arrays positionally, in declared field order, or in
the order given by their Tuple implementation. Integers convert between any
widths and signedness as long as the number fits; anything else that does not
fit the target type returns a *TypeError matching ErrTypeMismatch.

# Wire format

Encode, Decode and DecodeIn translate between Value trees and MessagePack
bytes using github.com/vmihailenco/msgpack/v5. Marshal and Unmarshal combine
them with Build and Convert. Malformed input is reported as *DataError.
*/
package mpobj
