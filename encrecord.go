package teal

import (
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"
)

// Stored record format:
//
//  1. Flags (uvarint).
//  2. Sequence number (uvarint).
//  3. XXH3-64 checksum of the body as stored (8 bytes, big-endian).
//  4. Body: msgpack-encoded property dict, zstd-compressed when large.
//
// A tombstone (deleted document) has recFlagDeleted set and an empty body.
// The sequence lives inside the record so that a document's provenance
// survives independently of the meta bucket.

const (
	recFlagDeleted = 1 << 0
	recFlagZstd    = 1 << 1
)

// Bodies below this size gain nothing from zstd and are stored raw.
const compressThreshold = 512

// Shared zstd encoder/decoder, both safe for concurrent use. Construction is
// expensive, so allocate once. SpeedFastest: compression runs on every save,
// decompression only when a large document is read back.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

type record struct {
	seq     uint64
	deleted bool
	props   *Dict // nil for tombstones
}

func encodeRecord(seq uint64, deleted bool, props *Dict) ([]byte, error) {
	var flags uint64
	var body []byte
	if deleted {
		flags |= recFlagDeleted
	} else {
		var err error
		body, err = encodeValue(nil, props.Value())
		if err != nil {
			return nil, err
		}
		if len(body) >= compressThreshold {
			body = zstdEncoder.EncodeAll(body, nil)
			flags |= recFlagZstd
		}
	}

	bb := bytesBuilder{make([]byte, 0, len(body)+20)}
	bb.AppendUvarint(flags)
	bb.AppendUvarint(seq)
	bb.AppendFixedUint64(xxh3.Hash(body))
	bb.Write(body)
	return bb.Buf, nil
}

func decodeRecord(data []byte) (record, error) {
	seq, deleted, body, err := parseRecord(data)
	if err != nil {
		return record{}, err
	}
	if deleted {
		return record{seq: seq, deleted: true}, nil
	}
	v, err := decodeValueBytes(body)
	if err != nil {
		return record{}, err
	}
	d := v.AsDict()
	if d == nil {
		return record{}, dataErrf(data, 0, nil, "record body is %v, not a dict", v.Kind())
	}
	return record{seq: seq, props: d}, nil
}

// decodeRecordMeta parses flags and sequence without touching the body, for
// liveness checks on the save path.
func decodeRecordMeta(data []byte) (seq uint64, deleted bool, err error) {
	d := makeByteDecoder(data)
	flags, err := d.Uvarint()
	if err != nil {
		return 0, false, err
	}
	seq, err = d.Uvarint()
	if err != nil {
		return 0, false, err
	}
	return seq, flags&recFlagDeleted != 0, nil
}

func parseRecord(data []byte) (seq uint64, deleted bool, body []byte, err error) {
	d := makeByteDecoder(data)
	flags, err := d.Uvarint()
	if err != nil {
		return 0, false, nil, err
	}
	seq, err = d.Uvarint()
	if err != nil {
		return 0, false, nil, err
	}
	sum, err := d.FixedUint64()
	if err != nil {
		return 0, false, nil, err
	}
	body = d.Rest()
	if xxh3.Hash(body) != sum {
		return 0, false, nil, dataErrf(data, d.Off(), nil, "record checksum mismatch")
	}
	if flags&recFlagZstd != 0 {
		body, err = zstdDecoder.DecodeAll(body, nil)
		if err != nil {
			return 0, false, nil, dataErrf(data, 0, err, "record decompression failed")
		}
	}
	return seq, flags&recFlagDeleted != 0, body, nil
}
