package teal

import (
	"fmt"
	"iter"
	"slices"
)

// Dict is a keyed mapping from string keys to Values. Iteration follows
// insertion order; equality does not depend on it. A frozen Dict (one owned
// by an immutable Document snapshot) rejects all mutation with
// ErrImmutableDocument; derive a mutable copy instead.
type Dict struct {
	keys   []string
	m      map[string]Value
	frozen bool
}

func NewDict() *Dict {
	return &Dict{m: make(map[string]Value)}
}

// Value wraps the Dict in a DictKind Value sharing the same container.
func (d *Dict) Value() Value {
	return Value{kind: DictKind, dict: d}
}

func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

func (d *Dict) Has(key string) bool {
	if d == nil {
		return false
	}
	_, found := d.m[key]
	return found
}

// Get returns the Value stored under key, or Null when the key is absent.
// A miss is an expected outcome, not an error.
func (d *Dict) Get(key string) Value {
	if d == nil {
		return Null
	}
	return d.m[key]
}

// Set stores a Value under key, appending the key to the iteration order if
// it is new. Fails with ErrImmutableDocument on a frozen Dict.
func (d *Dict) Set(key string, v Value) error {
	if d.frozen {
		return ErrImmutableDocument
	}
	d.put(key, v)
	return nil
}

// put is Set without the frozen check, for construction paths.
func (d *Dict) put(key string, v Value) {
	if d.m == nil {
		d.m = make(map[string]Value)
	}
	if _, found := d.m[key]; !found {
		d.keys = append(d.keys, key)
	}
	d.m[key] = v
}

// Remove deletes a key. Removing an absent key is a no-op.
func (d *Dict) Remove(key string) error {
	if d.frozen {
		return ErrImmutableDocument
	}
	if _, found := d.m[key]; !found {
		return nil
	}
	delete(d.m, key)
	i := slices.Index(d.keys, key)
	d.keys = slices.Delete(d.keys, i, i+1)
	return nil
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	if d == nil {
		return nil
	}
	return slices.Clone(d.keys)
}

func (d *Dict) KeySeq() iter.Seq[string] {
	return func(yield func(string) bool) {
		if d == nil {
			return
		}
		for _, k := range d.keys {
			if !yield(k) {
				return
			}
		}
	}
}

// GetPath descends through nested Dicts along path, returning Null as soon
// as a step is absent or not a Dict.
func (d *Dict) GetPath(path ...string) Value {
	if len(path) == 0 {
		return d.Value()
	}
	cur := d
	for _, key := range path[:len(path)-1] {
		cur = cur.Get(key).AsDict()
		if cur == nil {
			return Null
		}
	}
	return cur.Get(path[len(path)-1])
}

// SetPath stores a Value at a nested path, creating intermediate Dicts for
// absent keys. An intermediate key holding a non-Dict value fails with
// ErrTypeMismatch.
func (d *Dict) SetPath(v Value, path ...string) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty property path", ErrTypeMismatch)
	}
	if d.frozen {
		return ErrImmutableDocument
	}
	cur := d
	for _, key := range path[:len(path)-1] {
		next := cur.Get(key)
		switch next.Kind() {
		case DictKind:
			cur = next.AsDict()
		case NullKind:
			if !cur.Has(key) {
				child := NewDict()
				cur.put(key, child.Value())
				cur = child
				continue
			}
			return fmt.Errorf("%w: property %q holds null, not a dict", ErrTypeMismatch, key)
		default:
			return fmt.Errorf("%w: property %q holds %v, not a dict", ErrTypeMismatch, key, next.Kind())
		}
	}
	cur.put(path[len(path)-1], v)
	return nil
}

// Equal reports structural equality, independent of insertion order.
func (d *Dict) Equal(e *Dict) bool {
	if d.Len() != e.Len() {
		return false
	}
	if d == nil || e == nil {
		return d.Len() == e.Len()
	}
	for k, v := range d.m {
		w, found := e.m[k]
		if !found || !v.Equal(w) {
			return false
		}
	}
	return true
}

func (d *Dict) freeze() {
	if d == nil || d.frozen {
		return
	}
	d.frozen = true
	for _, v := range d.m {
		v.freeze()
	}
}

func (d *Dict) mutableCopy() *Dict {
	if d == nil {
		return NewDict()
	}
	e := &Dict{
		keys: slices.Clone(d.keys),
		m:    make(map[string]Value, len(d.m)),
	}
	for k, v := range d.m {
		e.m[k] = v.mutableCopy()
	}
	return e
}

// sortedKeys is the canonical key order used by the binary encoding, so that
// structurally equal dicts produce identical bytes.
func (d *Dict) sortedKeys() []string {
	keys := slices.Clone(d.keys)
	slices.Sort(keys)
	return keys
}
