package mpobj

import (
	"encoding/binary"
	"fmt"
	"time"
)

// TimestampExtType is the extension type MessagePack reserves for
// timestamps.
const TimestampExtType int8 = -1

// NewTimestamp returns a timestamp extension holding t, using the shortest of
// the 32-, 64- and 96-bit encodings that can represent it.
func (a *Arena) NewTimestamp(t time.Time) Value {
	sec := t.Unix()
	nsec := int64(t.Nanosecond())

	var data []byte
	if sec>>34 == 0 {
		n := uint64(nsec)<<34 | uint64(sec)
		if n&0xffffffff00000000 == 0 {
			data = a.allocBytes(4)
			binary.BigEndian.PutUint32(data, uint32(n))
		} else {
			data = a.allocBytes(8)
			binary.BigEndian.PutUint64(data, n)
		}
	} else {
		data = a.allocBytes(12)
		binary.BigEndian.PutUint32(data, uint32(nsec))
		binary.BigEndian.PutUint64(data[4:], uint64(sec))
	}
	return a.extOf(TimestampExtType, data)
}

// Time decodes a timestamp extension. The result is in UTC.
func (v Value) Time() (time.Time, error) {
	if v.kind != KindExtension || v.ext != TimestampExtType {
		return time.Time{}, typeErr("timestamp extension", v, timeType)
	}
	v.mustBeLive("Time")

	var sec, nsec int64
	switch data := v.data; len(data) {
	case 4:
		sec = int64(binary.BigEndian.Uint32(data))
	case 8:
		n := binary.BigEndian.Uint64(data)
		nsec = int64(n >> 34)
		sec = int64(n & (1<<34 - 1))
	case 12:
		nsec = int64(binary.BigEndian.Uint32(data))
		sec = int64(binary.BigEndian.Uint64(data[4:]))
	default:
		return time.Time{}, &TypeError{Want: "timestamp extension", Got: v.kind, Type: timeType, Err: fmt.Errorf("invalid length %d", len(data))}
	}
	if nsec >= 1e9 {
		return time.Time{}, &TypeError{Want: "timestamp extension", Got: v.kind, Type: timeType, Err: fmt.Errorf("nanoseconds %d out of range", nsec)}
	}
	return time.Unix(sec, nsec).UTC(), nil
}
