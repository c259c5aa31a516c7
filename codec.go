package mpobj

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Encode appends the MessagePack encoding of v to buf.
func Encode(buf []byte, v Value) ([]byte, error) {
	bb := bytesBuilder{buf}
	enc := msgpack.GetEncoder()
	enc.ResetDict(&bb, nil)
	err := encodeValue(enc, v)
	msgpack.PutEncoder(enc)
	if err != nil {
		return buf, err
	}
	return bb.Buf, nil
}

// EncodeMsgpack implements msgpack.CustomEncoder, so a Value can be a field
// of a struct passed to msgpack.Marshal.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	return encodeValue(enc, v)
}

func encodeValue(enc *msgpack.Encoder, v Value) error {
	if !v.IsLive() {
		return fmt.Errorf("mpobj: Encode %v: %w", v.kind, ErrArenaReleased)
	}
	switch v.kind {
	case KindNil:
		return enc.EncodeNil()
	case KindBoolean:
		return enc.EncodeBool(v.num != 0)
	case KindPositiveInteger:
		return enc.EncodeUint(v.num)
	case KindNegativeInteger:
		return enc.EncodeInt(int64(v.num))
	case KindDouble:
		return enc.EncodeFloat64(math.Float64frombits(v.num))
	case KindString:
		return enc.EncodeString(string(v.data))
	case KindBinary:
		// EncodeBytes writes Nil for a nil slice, and an empty Binary has
		// nil data.
		if err := enc.EncodeBytesLen(len(v.data)); err != nil {
			return err
		}
		return writeRaw(enc, v.data)
	case KindExtension:
		if err := enc.EncodeExtHeader(v.ext, len(v.data)); err != nil {
			return err
		}
		return writeRaw(enc, v.data)
	case KindArray:
		if err := enc.EncodeArrayLen(len(v.items)); err != nil {
			return err
		}
		for _, item := range v.items {
			if err := encodeValue(enc, item); err != nil {
				return err
			}
		}
		return nil
	case KindMap:
		if err := enc.EncodeMapLen(len(v.pairs)); err != nil {
			return err
		}
		for _, p := range v.pairs {
			if err := encodeValue(enc, p.Key); err != nil {
				return err
			}
			if err := encodeValue(enc, p.Val); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("mpobj: Encode: invalid kind %v", v.kind)
	}
}

func writeRaw(enc *msgpack.Encoder, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	_, err := enc.Writer().Write(data)
	return err
}

// Decode parses data, which must hold exactly one MessagePack object, into a
// tree owned by a fresh arena.
func Decode(data []byte) (*OwnedTree, error) {
	a := NewArenaOpt(ArenaOptions{ChunkSize: decodeChunkSize(len(data))})
	v, n, err := DecodeIn(a, data)
	if err == nil && n != len(data) {
		err = dataErrf(data, n, nil, "%d trailing bytes", len(data)-n)
	}
	if err != nil {
		a.Release()
		return nil, err
	}
	return &OwnedTree{Value: v, arena: a}, nil
}

// decodeChunkSize picks a first chunk big enough for the payloads of most
// inputs of size n, since those can never exceed the input.
func decodeChunkSize(n int) int {
	return max(min(n, DefaultMaxChunkSize), 64)
}

// DecodeIn parses the first MessagePack object of data into a, and returns it
// together with the number of bytes consumed. On error, memory already taken
// from a stays allocated until a is reset or released.
func DecodeIn(a *Arena, data []byte) (Value, int, error) {
	a.mustBeLive("DecodeIn")
	var r bytes.Reader
	r.Reset(data)
	dec := msgpack.GetDecoder()
	dec.ResetDict(&r, nil)
	td := treeDecoder{dec: dec, arena: a, data: data, r: &r}
	v, err := td.decode(0)
	msgpack.PutDecoder(dec)
	if err != nil {
		return Value{}, td.off(), err
	}
	return v, td.off(), nil
}

var errUnexpectedCode = errors.New("unexpected code")

type treeDecoder struct {
	dec   *msgpack.Decoder
	arena *Arena
	data  []byte
	r     *bytes.Reader
}

func (d *treeDecoder) off() int {
	return len(d.data) - d.r.Len()
}

func (d *treeDecoder) fail(off int, err error, msg string) error {
	return dataErrf(d.data, off, err, "%s", msg)
}

// remaining bounds a declared length by what is left of the input, so that
// a corrupt header cannot make the arena reserve more than len(data) items.
func (d *treeDecoder) remaining(off, n, unit int) error {
	if n < 0 || n > d.r.Len()/unit {
		return dataErrf(d.data, off, nil, "declared length %d exceeds remaining input of %d bytes", n, d.r.Len())
	}
	return nil
}

func (d *treeDecoder) decode(depth int) (Value, error) {
	off := d.off()
	if depth > MaxDepth {
		return Value{}, d.fail(off, ErrTooDeep, "invalid object")
	}
	c, err := d.dec.PeekCode()
	if err != nil {
		return Value{}, d.fail(off, err, "truncated input")
	}

	switch {
	case msgpcode.IsFixedNum(c):
		n, err := d.dec.DecodeInt64()
		if err != nil {
			return Value{}, d.fail(off, err, "invalid integer")
		}
		return Int(n), nil
	case c == msgpcode.Nil:
		if err := d.dec.DecodeNil(); err != nil {
			return Value{}, d.fail(off, err, "invalid nil")
		}
		return Value{}, nil
	case c == msgpcode.False || c == msgpcode.True:
		b, err := d.dec.DecodeBool()
		if err != nil {
			return Value{}, d.fail(off, err, "invalid boolean")
		}
		return Bool(b), nil
	case c == msgpcode.Float || c == msgpcode.Double:
		f, err := d.dec.DecodeFloat64()
		if err != nil {
			return Value{}, d.fail(off, err, "invalid float")
		}
		return Float(f), nil
	case c == msgpcode.Uint8 || c == msgpcode.Uint16 || c == msgpcode.Uint32 || c == msgpcode.Uint64:
		n, err := d.dec.DecodeUint64()
		if err != nil {
			return Value{}, d.fail(off, err, "invalid integer")
		}
		return Uint(n), nil
	case c == msgpcode.Int8 || c == msgpcode.Int16 || c == msgpcode.Int32 || c == msgpcode.Int64:
		n, err := d.dec.DecodeInt64()
		if err != nil {
			return Value{}, d.fail(off, err, "invalid integer")
		}
		return Int(n), nil
	case msgpcode.IsString(c) || msgpcode.IsBin(c):
		kind := KindBinary
		if msgpcode.IsString(c) {
			kind = KindString
		}
		n, err := d.dec.DecodeBytesLen()
		if err != nil {
			return Value{}, d.fail(off, err, "invalid "+kind.String())
		}
		data, err := d.payload(off, n)
		if err != nil {
			return Value{}, err
		}
		return d.arena.bytesOf(kind, data), nil
	case msgpcode.IsExt(c):
		typ, n, err := d.dec.DecodeExtHeader()
		if err != nil {
			return Value{}, d.fail(off, err, "invalid extension")
		}
		data, err := d.payload(off, n)
		if err != nil {
			return Value{}, err
		}
		return d.arena.extOf(typ, data), nil
	case msgpcode.IsFixedArray(c) || c == msgpcode.Array16 || c == msgpcode.Array32:
		n, err := d.dec.DecodeArrayLen()
		if err != nil {
			return Value{}, d.fail(off, err, "invalid array")
		}
		if err := d.remaining(off, n, 1); err != nil {
			return Value{}, err
		}
		items := d.arena.allocValues(n)
		for i := range items {
			if items[i], err = d.decode(depth + 1); err != nil {
				return Value{}, err
			}
		}
		return d.arena.arrayOf(items), nil
	case msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32:
		n, err := d.dec.DecodeMapLen()
		if err != nil {
			return Value{}, d.fail(off, err, "invalid map")
		}
		if err := d.remaining(off, n, 2); err != nil {
			return Value{}, err
		}
		pairs := d.arena.allocPairs(n)
		for i := range pairs {
			if pairs[i].Key, err = d.decode(depth + 1); err != nil {
				return Value{}, err
			}
			if pairs[i].Val, err = d.decode(depth + 1); err != nil {
				return Value{}, err
			}
		}
		return d.arena.mapOf(pairs), nil
	default:
		return Value{}, dataErrf(d.data, off, errUnexpectedCode, "invalid code 0x%02x", c)
	}
}

func (d *treeDecoder) payload(off, n int) ([]byte, error) {
	if err := d.remaining(off, n, 1); err != nil {
		return nil, err
	}
	data := d.arena.allocBytes(n)
	if n > 0 {
		if err := d.dec.ReadFull(data); err != nil {
			return nil, d.fail(off, err, "truncated payload")
		}
	}
	return data, nil
}

// Marshal builds x in a pooled arena and returns its MessagePack encoding.
func Marshal(x any) ([]byte, error) {
	a := getArena()
	defer putArena(a)
	v, err := Build(a, x)
	if err != nil {
		return nil, err
	}
	return Encode(nil, v)
}

// Unmarshal decodes data, which must hold exactly one object, into the Go
// value ptr points to, following the rules of Value.Convert. The arena used
// for decoding is recycled before Unmarshal returns, so ptr must not hold
// Value fields; use Decode or Zoned for those.
func Unmarshal(data []byte, ptr any) error {
	a := getArena()
	defer putArena(a)
	v, n, err := DecodeIn(a, data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return dataErrf(data, n, nil, "%d trailing bytes", len(data)-n)
	}
	return v.Convert(ptr)
}
