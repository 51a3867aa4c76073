package teal

import (
	"fmt"
	"iter"
)

// Array is an ordered sequence of Values. Like Dict, a frozen Array rejects
// mutation with ErrImmutableDocument. Order is significant for equality.
type Array struct {
	items  []Value
	frozen bool
}

func NewArray(items ...Value) *Array {
	return &Array{items: items}
}

// Value wraps the Array in an ArrayKind Value sharing the same container.
func (a *Array) Value() Value {
	return Value{kind: ArrayKind, arr: a}
}

func (a *Array) Len() int {
	if a == nil {
		return 0
	}
	return len(a.items)
}

// At returns the element at index i, or Null when i is out of range.
func (a *Array) At(i int) Value {
	if a == nil || i < 0 || i >= len(a.items) {
		return Null
	}
	return a.items[i]
}

func (a *Array) Set(i int, v Value) error {
	if a.frozen {
		return ErrImmutableDocument
	}
	if i < 0 || i >= len(a.items) {
		return fmt.Errorf("array index %d out of range (len %d)", i, len(a.items))
	}
	a.items[i] = v
	return nil
}

func (a *Array) Append(values ...Value) error {
	if a.frozen {
		return ErrImmutableDocument
	}
	a.items = append(a.items, values...)
	return nil
}

func (a *Array) Values() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		if a == nil {
			return
		}
		for _, v := range a.items {
			if !yield(v) {
				return
			}
		}
	}
}

// Equal reports structural equality; element order matters.
func (a *Array) Equal(b *Array) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.Len() {
		if !a.items[i].Equal(b.items[i]) {
			return false
		}
	}
	return true
}

func (a *Array) freeze() {
	if a == nil || a.frozen {
		return
	}
	a.frozen = true
	for _, v := range a.items {
		v.freeze()
	}
}

func (a *Array) mutableCopy() *Array {
	if a == nil {
		return &Array{}
	}
	b := &Array{items: make([]Value, len(a.items))}
	for i, v := range a.items {
		b.items[i] = v.mutableCopy()
	}
	return b
}
