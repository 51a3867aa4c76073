/*
Package teal implements an embedded document database on top of a key-value
store (in this case, on top of Bolt).

We implement:

1. A closed dynamically-typed value model (null, bool, int, float, string,
array, dict) for schemaless JSON-like property trees.

2. Documents addressed by string ids, in two flavors: immutable snapshots as
loaded from storage, and mutable in-memory copies for editing.

3. A Database that mediates all reads and writes, assigns a monotonically
increasing sequence number on every committed change, and tracks the count
of live documents.

4. Change notifications, immediate or buffered, per database or per
document.

# Technical Details

**Buckets.**
The backing Bolt file holds two buckets: “docs” maps document ids to encoded
records, “meta” holds the live-document count and the last assigned
sequence. A record write and both counter updates commit in one Bolt
transaction.

**Sequences.**
Sequence numbers are database-wide, not per-document. Saves and deletions
both consume one; deletions write a tombstone record so the counter stays
strictly monotonic across every mutation.

## Binary encoding

**Record**: flags (uvarint), sequence (uvarint), XXH3-64 checksum of the
stored body (8 bytes), then the body.

**Body**: msgpack of the property dict, with dict keys sorted so equal trees
encode identically. Bodies past a size threshold are zstd-compressed, marked
by a record flag. Integer and float values use distinct msgpack families, so
a value's kind survives a round trip.
*/
package teal
