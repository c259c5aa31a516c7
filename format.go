package mpobj

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

const releasedText = "<released>"

// String renders v on a single line: nil, true, 42, -1, 1.5, "str",
// b"\x01", ext(5:0102), [1, 2], {"k"=>"v"}.
func (v Value) String() string {
	return string(v.AppendText(nil))
}

// AppendText appends the String form of v to buf. It never fails: values
// whose arena is gone render as <released>.
func (v Value) AppendText(buf []byte) []byte {
	if !v.IsLive() {
		return append(buf, releasedText...)
	}
	switch v.kind {
	case KindNil:
		return append(buf, "nil"...)
	case KindBoolean:
		return strconv.AppendBool(buf, v.num != 0)
	case KindPositiveInteger:
		return strconv.AppendUint(buf, v.num, 10)
	case KindNegativeInteger:
		return strconv.AppendInt(buf, int64(v.num), 10)
	case KindDouble:
		return strconv.AppendFloat(buf, math.Float64frombits(v.num), 'g', -1, 64)
	case KindString:
		return strconv.AppendQuote(buf, string(v.data))
	case KindBinary:
		buf = append(buf, 'b')
		return strconv.AppendQuote(buf, string(v.data))
	case KindExtension:
		buf = append(buf, "ext("...)
		buf = strconv.AppendInt(buf, int64(v.ext), 10)
		buf = append(buf, ':')
		buf = hex.AppendEncode(buf, v.data)
		return append(buf, ')')
	case KindArray:
		buf = append(buf, '[')
		for i, item := range v.items {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = item.AppendText(buf)
		}
		return append(buf, ']')
	case KindMap:
		buf = append(buf, '{')
		for i, p := range v.pairs {
			if i > 0 {
				buf = append(buf, ", "...)
			}
			buf = p.Key.AppendText(buf)
			buf = append(buf, "=>"...)
			buf = p.Val.AppendText(buf)
		}
		return append(buf, '}')
	default:
		return fmt.Appendf(buf, "<%v>", v.kind)
	}
}

// MarshalJSON renders v as JSON. Binary becomes a base64 string, Extension
// becomes {"type": t, "data": base64}, and a Map becomes an object when all
// its keys are strings and an array of [key, value] pairs otherwise. NaN and
// infinite doubles cannot be represented and produce an error.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.appendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var errJSONReleased = fmt.Errorf("mpobj: MarshalJSON: %w", ErrArenaReleased)

func (v Value) appendJSON(buf *bytes.Buffer) error {
	if !v.IsLive() {
		return errJSONReleased
	}
	switch v.kind {
	case KindNil:
		buf.WriteString("null")
	case KindBoolean:
		buf.WriteString(strconv.FormatBool(v.num != 0))
	case KindPositiveInteger:
		buf.WriteString(strconv.FormatUint(v.num, 10))
	case KindNegativeInteger:
		buf.WriteString(strconv.FormatInt(int64(v.num), 10))
	case KindDouble, KindString, KindBinary:
		var x any
		switch v.kind {
		case KindDouble:
			x = v.Float()
		case KindString:
			x = string(v.data)
		default:
			x = v.data
		}
		raw, err := json.Marshal(x)
		if err != nil {
			return err
		}
		buf.Write(raw)
	case KindExtension:
		raw, err := json.Marshal(struct {
			Type int8   `json:"type"`
			Data []byte `json:"data"`
		}{v.ext, v.data})
		if err != nil {
			return err
		}
		buf.Write(raw)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.appendJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		obj := v.hasStringKeys()
		if obj {
			buf.WriteByte('{')
		} else {
			buf.WriteByte('[')
		}
		for i, p := range v.pairs {
			if i > 0 {
				buf.WriteByte(',')
			}
			if obj {
				if err := p.Key.appendJSON(buf); err != nil {
					return err
				}
				buf.WriteByte(':')
				if err := p.Val.appendJSON(buf); err != nil {
					return err
				}
			} else {
				buf.WriteByte('[')
				if err := p.Key.appendJSON(buf); err != nil {
					return err
				}
				buf.WriteByte(',')
				if err := p.Val.appendJSON(buf); err != nil {
					return err
				}
				buf.WriteByte(']')
			}
		}
		if obj {
			buf.WriteByte('}')
		} else {
			buf.WriteByte(']')
		}
	default:
		return errors.New("mpobj: MarshalJSON: invalid kind")
	}
	return nil
}

func (v Value) hasStringKeys() bool {
	for _, p := range v.pairs {
		if p.Key.kind != KindString {
			return false
		}
	}
	return true
}
