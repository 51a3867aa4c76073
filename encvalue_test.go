package teal

import (
	"testing"
)

func TestValueRoundTrip(t *testing.T) {
	orig := MustValue(map[string]any{
		"flavor":  "cardamom",
		"numbers": []any{1, 0, 3.125},
		"color":   "green",
		"crisp":   true,
		"nothing": nil,
		"nested":  map[string]any{"depth": 2},
	})

	data := must(encodeValue(nil, orig))
	got := must(decodeValueBytes(data))

	if !got.Equal(orig) {
		t.Fatalf("round trip mismatch:\n got %v\nwant %v", got, orig)
	}

	// Kind preservation through the trip, not just equality.
	d := got.AsDict()
	nums := d.Get("numbers").AsArray()
	if nums.At(0).Kind() != IntKind {
		t.Errorf("numbers[0] decoded as %v, wanted int", nums.At(0).Kind())
	}
	if nums.At(2).Kind() != FloatKind {
		t.Errorf("numbers[2] decoded as %v, wanted float", nums.At(2).Kind())
	}
}

func TestIntFloatSurviveRoundTripDistinctly(t *testing.T) {
	for _, v := range []Value{Int(3), Float(3.0), Int(-1), Float(-1.5)} {
		data := must(encodeValue(nil, v))
		got := must(decodeValueBytes(data))
		if got.Kind() != v.Kind() {
			t.Errorf("kind changed: %v -> %v", v.Kind(), got.Kind())
		}
		if !got.Equal(v) {
			t.Errorf("value changed: %v -> %v", v, got)
		}
	}
}

func TestCanonicalEncodingIsOrderIndependent(t *testing.T) {
	d1 := NewDict()
	d1.Set("a", Int(1))
	d1.Set("b", Int(2))

	d2 := NewDict()
	d2.Set("b", Int(2))
	d2.Set("a", Int(1))

	b1 := must(encodeValue(nil, d1.Value()))
	b2 := must(encodeValue(nil, d2.Value()))
	if string(b1) != string(b2) {
		t.Errorf("equal dicts encoded differently:\n%x\n%x", b1, b2)
	}
}

func TestDecodeGarbageFails(t *testing.T) {
	if _, err := decodeValueBytes([]byte{0xc1}); err == nil {
		t.Errorf("decoding reserved msgpack code should fail")
	}
}
