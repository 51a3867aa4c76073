package teal

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// JSON bridge for property trees. Encoding follows insertion order for
// dicts. Decoding goes through json.Number so that integer-valued numbers
// come back as IntKind and fractional ones as FloatKind.

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case NullKind:
		return []byte("null"), nil
	case BoolKind:
		return json.Marshal(v.num != 0)
	case IntKind:
		return json.Marshal(v.AsInt())
	case FloatKind:
		return json.Marshal(v.AsFloat())
	case StringKind:
		return json.Marshal(v.str)
	case ArrayKind:
		return v.arr.MarshalJSON()
	case DictKind:
		return v.dict.MarshalJSON()
	default:
		return nil, fmt.Errorf("%w: cannot marshal kind %v", ErrTypeMismatch, v.kind)
	}
}

func (a *Array) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, el := range a.items {
		if i > 0 {
			sb.WriteByte(',')
		}
		raw, err := el.MarshalJSON()
		if err != nil {
			return nil, err
		}
		sb.Write(raw)
	}
	sb.WriteByte(']')
	return []byte(sb.String()), nil
}

func (d *Dict) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		rawKey, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		sb.Write(rawKey)
		sb.WriteByte(':')
		raw, err := d.m[key].MarshalJSON()
		if err != nil {
			return nil, err
		}
		sb.Write(raw)
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}

// String renders the Value as JSON for debugging.
func (v Value) String() string {
	raw, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%v>", v.kind)
	}
	return string(raw)
}

// DictFromJSON parses a JSON object into a Dict. Keys come back sorted (the
// intermediate Go map loses source order); numeric kinds are preserved.
func DictFromJSON(data []byte) (*Dict, error) {
	v, err := ValueFromJSON(data)
	if err != nil {
		return nil, err
	}
	d := v.AsDict()
	if d == nil {
		return nil, fmt.Errorf("%w: top-level JSON value is %v, not an object", ErrTypeMismatch, v.Kind())
	}
	return d, nil
}

// ValueFromJSON parses any JSON value into a Value.
func ValueFromJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Null, fmt.Errorf("parsing JSON: %w", err)
	}
	return ValueOf(raw)
}

// PropertiesAsJSON renders the document body as a JSON object string.
func (doc *Document) PropertiesAsJSON() (string, error) {
	raw, err := doc.props.MarshalJSON()
	return string(raw), err
}

func (doc *MutableDocument) PropertiesAsJSON() (string, error) {
	raw, err := doc.props.MarshalJSON()
	return string(raw), err
}

// SetPropertiesFromJSON replaces the document body with the parsed object.
func (doc *MutableDocument) SetPropertiesFromJSON(s string) error {
	d, err := DictFromJSON([]byte(s))
	if err != nil {
		return err
	}
	doc.props = d
	return nil
}

func numberValue(n json.Number) (Value, error) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := n.Int64(); err == nil {
			return Int(i), nil
		}
	}
	f, err := n.Float64()
	if err != nil {
		return Null, fmt.Errorf("%w: bad number %q", ErrTypeMismatch, s)
	}
	return Float(f), nil
}
