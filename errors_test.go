package teal

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDataErrorFormatting(t *testing.T) {
	err := dataErrf([]byte{0xAA, 0xBB}, 1, nil, "bad record")
	if got := err.Error(); got != "bad record: (2) aabb" {
		t.Errorf("Error = %q", got)
	}

	inner := errors.New("inner")
	err = dataErrf([]byte{0x01}, 0, inner, "decode failed")
	if !errors.Is(err, inner) {
		t.Errorf("DataError should unwrap to its cause")
	}
	if got := err.Error(); got != "decode failed: inner: (1) 01" {
		t.Errorf("Error = %q", got)
	}
}

func TestDataErrorTruncatesLongData(t *testing.T) {
	data := bytes.Repeat([]byte{0xCD}, 200)
	err := dataErrf(data, 0, nil, "too long")
	msg := err.Error()
	if !strings.Contains(msg, "...") {
		t.Errorf("long data not truncated: %q", msg)
	}
	if !strings.Contains(msg, "(200)") {
		t.Errorf("length missing from message: %q", msg)
	}
}

func TestOpenErrorWrapping(t *testing.T) {
	err := openErrf("/tmp/db.teal", ErrResourceBusy, "")
	if !errors.Is(err, ErrResourceBusy) {
		t.Errorf("OpenError should unwrap to its cause")
	}
	var oerr *OpenError
	if !errors.As(err, &oerr) || oerr.Path != "/tmp/db.teal" {
		t.Errorf("OpenError not recoverable via errors.As: %v", err)
	}
	if got := err.Error(); !strings.HasPrefix(got, "open /tmp/db.teal: ") {
		t.Errorf("Error = %q", got)
	}

	err = openErrf("/tmp/db.teal", fmt.Errorf("disk on fire"), "creating directory")
	if got := err.Error(); !strings.Contains(got, "creating directory: disk on fire") {
		t.Errorf("Error = %q", got)
	}
}
