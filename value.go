package teal

import (
	"fmt"
	"maps"
	"math"
	"slices"

	json "github.com/goccy/go-json"
)

// Kind identifies the type of data held by a Value.
type Kind uint8

const (
	NullKind Kind = iota
	BoolKind
	IntKind
	FloatKind
	StringKind
	ArrayKind
	DictKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case StringKind:
		return "string"
	case ArrayKind:
		return "array"
	case DictKind:
		return "dict"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a single node of a document property tree. It is a closed tagged
// variant: exactly one of the seven kinds, nothing else. Values are built
// bottom-up from leaves, so a tree can never contain a cycle.
//
// Scalar Values are plain immutable data and can be copied freely. Array and
// Dict Values share the underlying container; use mutableCopy to detach.
//
// Integers and floats are distinct kinds. Int(3) and Float(3.0) compare
// unequal, and each survives an encode/decode round trip with its kind intact.
type Value struct {
	kind Kind
	num  uint64
	str  string
	arr  *Array
	dict *Dict
}

// Null is the zero Value.
var Null = Value{}

func Bool(v bool) Value {
	var n uint64
	if v {
		n = 1
	}
	return Value{kind: BoolKind, num: n}
}

func Int(v int64) Value {
	return Value{kind: IntKind, num: uint64(v)}
}

func Float(v float64) Value {
	return Value{kind: FloatKind, num: math.Float64bits(v)}
}

func String(s string) Value {
	return Value{kind: StringKind, str: s}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == NullKind
}

// AsBool returns the payload of a BoolKind Value, false otherwise.
func (v Value) AsBool() bool {
	return v.kind == BoolKind && v.num != 0
}

// AsInt returns the payload of an IntKind Value, 0 otherwise.
func (v Value) AsInt() int64 {
	if v.kind == IntKind {
		return int64(v.num)
	}
	return 0
}

// AsFloat returns a numeric Value as float64, converting integers.
// Non-numeric Values yield 0.
func (v Value) AsFloat() float64 {
	switch v.kind {
	case FloatKind:
		return math.Float64frombits(v.num)
	case IntKind:
		return float64(int64(v.num))
	default:
		return 0
	}
}

// AsString returns the payload of a StringKind Value, "" otherwise.
func (v Value) AsString() string {
	if v.kind == StringKind {
		return v.str
	}
	return ""
}

// AsArray returns the underlying container of an ArrayKind Value, nil otherwise.
func (v Value) AsArray() *Array {
	if v.kind == ArrayKind {
		return v.arr
	}
	return nil
}

// AsDict returns the underlying container of a DictKind Value, nil otherwise.
func (v Value) AsDict() *Dict {
	if v.kind == DictKind {
		return v.dict
	}
	return nil
}

// Equal reports structural equality. Array comparison is order-dependent,
// Dict comparison is order-independent, and numeric kinds never cross:
// Int(3) is not equal to Float(3).
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case NullKind:
		return true
	case BoolKind, IntKind, FloatKind:
		return v.num == w.num
	case StringKind:
		return v.str == w.str
	case ArrayKind:
		return v.arr.Equal(w.arr)
	case DictKind:
		return v.dict.Equal(w.dict)
	default:
		return false
	}
}

func (v Value) freeze() {
	switch v.kind {
	case ArrayKind:
		v.arr.freeze()
	case DictKind:
		v.dict.freeze()
	}
}

func (v Value) mutableCopy() Value {
	switch v.kind {
	case ArrayKind:
		return Value{kind: ArrayKind, arr: v.arr.mutableCopy()}
	case DictKind:
		return Value{kind: DictKind, dict: v.dict.mutableCopy()}
	default:
		return v
	}
}

// ValueOf builds a Value from a native Go literal, recursing into slices and
// maps. Supported inputs: nil, bool, all int/uint sizes, float32/64, string,
// json.Number, []any, map[string]any, []Value, Value, *Array and *Dict.
// Anything else fails with ErrTypeMismatch.
func ValueOf(native any) (Value, error) {
	switch v := native.(type) {
	case nil:
		return Null, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		return Int(int64(v)), nil
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return Null, fmt.Errorf("%w: uint64 value %d overflows int64", ErrTypeMismatch, v)
		}
		return Int(int64(v)), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case string:
		return String(v), nil
	case json.Number:
		return numberValue(v)
	case *Array:
		return Value{kind: ArrayKind, arr: v}, nil
	case *Dict:
		return Value{kind: DictKind, dict: v}, nil
	case []Value:
		a := &Array{items: append([]Value(nil), v...)}
		return Value{kind: ArrayKind, arr: a}, nil
	case []any:
		a := &Array{items: make([]Value, 0, len(v))}
		for _, el := range v {
			ev, err := ValueOf(el)
			if err != nil {
				return Null, err
			}
			a.items = append(a.items, ev)
		}
		return Value{kind: ArrayKind, arr: a}, nil
	case map[string]any:
		d := NewDict()
		for _, k := range sortedMapKeys(v) {
			ev, err := ValueOf(v[k])
			if err != nil {
				return Null, err
			}
			d.put(k, ev)
		}
		return Value{kind: DictKind, dict: d}, nil
	default:
		return Null, fmt.Errorf("%w: unsupported value type %T", ErrTypeMismatch, native)
	}
}

// MustValue is ValueOf for literals known to be valid; panics otherwise.
func MustValue(native any) Value {
	v, err := ValueOf(native)
	if err != nil {
		panic(err)
	}
	return v
}

func sortedMapKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
