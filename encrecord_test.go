package teal

import (
	"errors"
	"strings"
	"testing"
)

func TestRecordRoundTrip(t *testing.T) {
	props := MustValue(map[string]any{"color": "green"}).AsDict()
	data := must(encodeRecord(7, false, props))

	rec := must(decodeRecord(data))
	if rec.seq != 7 || rec.deleted {
		t.Fatalf("rec = %+v", rec)
	}
	if !rec.props.Equal(props) {
		t.Errorf("props mismatch after round trip")
	}

	seq, deleted := must2(decodeRecordMeta(data))
	if seq != 7 || deleted {
		t.Errorf("meta = (%d, %v), wanted (7, false)", seq, deleted)
	}
}

func TestTombstoneRecord(t *testing.T) {
	data := must(encodeRecord(9, true, nil))
	rec := must(decodeRecord(data))
	if !rec.deleted || rec.seq != 9 || rec.props != nil {
		t.Fatalf("tombstone = %+v", rec)
	}
}

func TestRecordChecksumDetectsCorruption(t *testing.T) {
	props := MustValue(map[string]any{"color": "green"}).AsDict()
	data := must(encodeRecord(1, false, props))

	data[len(data)-1] ^= 0xFF
	_, err := decodeRecord(data)
	var derr *DataError
	if !errors.As(err, &derr) {
		t.Fatalf("decode corrupt record = %v, wanted DataError", err)
	}
	if !strings.Contains(err.Error(), "checksum") {
		t.Errorf("err = %v, wanted checksum mismatch", err)
	}
}

func TestLargeBodyCompresses(t *testing.T) {
	props := NewDict()
	props.Set("blob", String(strings.Repeat("the quick brown fox ", 200)))
	data := must(encodeRecord(1, false, props))

	seq, deleted, body, err := parseRecord(data)
	if err != nil {
		t.Fatalf("parseRecord: %v", err)
	}
	if seq != 1 || deleted {
		t.Fatalf("seq = %d, deleted = %v", seq, deleted)
	}
	if len(body) < compressThreshold {
		t.Fatalf("decompressed body too small (%d), compression flag handling broken", len(body))
	}

	rec := must(decodeRecord(data))
	if !rec.props.Equal(props) {
		t.Errorf("compressed round trip mismatch")
	}
	// The stored record should be much smaller than the repetitive body.
	if len(data) >= len(body) {
		t.Errorf("record (%d bytes) not compressed below body size (%d bytes)", len(data), len(body))
	}
}

func TestTruncatedRecordFails(t *testing.T) {
	props := MustValue(map[string]any{"color": "green"}).AsDict()
	data := must(encodeRecord(1, false, props))
	for _, n := range []int{0, 1, 5} {
		if n >= len(data) {
			continue
		}
		if _, err := decodeRecord(data[:n]); err == nil {
			t.Errorf("decoding %d-byte prefix should fail", n)
		}
	}
}
