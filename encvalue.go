package teal

import (
	"bytes"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Canonical msgpack encoding of a Value tree. Dict entries are written in
// sorted key order so that structurally equal dicts produce identical bytes;
// the decoder restores them in that order. Integer and float kinds map to
// distinct msgpack families, so the constructor's kind survives a round trip.

func encodeValue(buf []byte, v Value) ([]byte, error) {
	bb := bytesBuilder{buf}
	enc := msgpack.GetEncoder()
	enc.ResetDict(&bb, nil)
	err := encodeValueTo(enc, v)
	msgpack.PutEncoder(enc)
	if err != nil {
		return nil, err
	}
	return bb.Buf, nil
}

func encodeValueTo(enc *msgpack.Encoder, v Value) error {
	switch v.kind {
	case NullKind:
		return enc.EncodeNil()
	case BoolKind:
		return enc.EncodeBool(v.num != 0)
	case IntKind:
		return enc.EncodeInt(int64(v.num))
	case FloatKind:
		return enc.EncodeFloat64(math.Float64frombits(v.num))
	case StringKind:
		return enc.EncodeString(v.str)
	case ArrayKind:
		a := v.arr
		if err := enc.EncodeArrayLen(a.Len()); err != nil {
			return err
		}
		for _, el := range a.items {
			if err := encodeValueTo(enc, el); err != nil {
				return err
			}
		}
		return nil
	case DictKind:
		d := v.dict
		if err := enc.EncodeMapLen(d.Len()); err != nil {
			return err
		}
		for _, key := range d.sortedKeys() {
			if err := enc.EncodeString(key); err != nil {
				return err
			}
			if err := encodeValueTo(enc, d.m[key]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: cannot encode kind %v", ErrTypeMismatch, v.kind)
	}
}

func decodeValueBytes(data []byte) (Value, error) {
	var r bytes.Reader
	r.Reset(data)
	dec := msgpack.GetDecoder()
	dec.ResetDict(&r, nil)
	v, err := decodeValueFrom(dec)
	msgpack.PutDecoder(dec)
	if err != nil {
		return Null, dataErrf(data, 0, err, "failed to decode property tree")
	}
	return v, nil
}

func decodeValueFrom(dec *msgpack.Decoder) (Value, error) {
	c, err := dec.PeekCode()
	if err != nil {
		return Null, err
	}
	switch {
	case c == msgpcode.Nil:
		return Null, dec.DecodeNil()
	case c == msgpcode.True || c == msgpcode.False:
		b, err := dec.DecodeBool()
		return Bool(b), err
	case msgpcode.IsFixedNum(c),
		c == msgpcode.Int8, c == msgpcode.Int16, c == msgpcode.Int32, c == msgpcode.Int64,
		c == msgpcode.Uint8, c == msgpcode.Uint16, c == msgpcode.Uint32, c == msgpcode.Uint64:
		n, err := dec.DecodeInt64()
		return Int(n), err
	case c == msgpcode.Float, c == msgpcode.Double:
		f, err := dec.DecodeFloat64()
		return Float(f), err
	case msgpcode.IsString(c):
		s, err := dec.DecodeString()
		return String(s), err
	case msgpcode.IsFixedArray(c), c == msgpcode.Array16, c == msgpcode.Array32:
		n, err := dec.DecodeArrayLen()
		if err != nil {
			return Null, err
		}
		a := &Array{items: make([]Value, 0, n)}
		for i := 0; i < n; i++ {
			el, err := decodeValueFrom(dec)
			if err != nil {
				return Null, err
			}
			a.items = append(a.items, el)
		}
		return a.Value(), nil
	case msgpcode.IsFixedMap(c), c == msgpcode.Map16, c == msgpcode.Map32:
		n, err := dec.DecodeMapLen()
		if err != nil {
			return Null, err
		}
		d := NewDict()
		for i := 0; i < n; i++ {
			key, err := dec.DecodeString()
			if err != nil {
				return Null, err
			}
			el, err := decodeValueFrom(dec)
			if err != nil {
				return Null, err
			}
			d.put(key, el)
		}
		return d.Value(), nil
	default:
		return Null, fmt.Errorf("unsupported msgpack code 0x%02x", c)
	}
}
