package teal

import (
	"crypto/rand"
	"encoding/hex"
)

// Document is an immutable snapshot of a stored document: an identifier, the
// sequence number assigned at its last save, and a frozen property tree.
// Editing requires an explicit mutable copy via Mutate.
type Document struct {
	id    string
	seq   uint64
	props *Dict
}

func (doc *Document) ID() string {
	return doc.id
}

// Sequence returns the sequence number assigned when this snapshot was
// committed; 0 means never saved.
func (doc *Document) Sequence() uint64 {
	return doc.seq
}

// Properties returns the document body. The Dict is frozen; mutation fails
// with ErrImmutableDocument.
func (doc *Document) Properties() *Dict {
	return doc.props
}

func (doc *Document) Get(key string) Value {
	return doc.props.Get(key)
}

func (doc *Document) GetPath(path ...string) Value {
	return doc.props.GetPath(path...)
}

// Set always fails on an immutable snapshot; use Mutate to obtain an
// editable copy.
func (doc *Document) Set(key string, value any) error {
	return ErrImmutableDocument
}

// Equal reports whether two documents have the same id and structurally
// equal properties. Sequence is provenance metadata and is excluded.
func (doc *Document) Equal(other *Document) bool {
	if doc == nil || other == nil {
		return doc == other
	}
	return doc.id == other.id && doc.props.Equal(other.props)
}

// Mutate returns an editable deep copy of the snapshot. The copy starts at
// the snapshot's sequence and diverges from the store on its next save.
func (doc *Document) Mutate() *MutableDocument {
	return &MutableDocument{
		id:    doc.id,
		seq:   doc.seq,
		props: doc.props.mutableCopy(),
	}
}

// MutableDocument is an editable in-memory document. A fresh instance has
// sequence 0 and an empty property dict; one derived from a snapshot starts
// as a deep copy of it. Saving updates the sequence in place but the
// instance stays editable, drifting from the store until saved again.
type MutableDocument struct {
	id    string
	seq   uint64
	props *Dict
}

// NewMutableDocument creates a new document that is not yet in any database.
// An empty id gets a generated one.
func NewMutableDocument(id string) *MutableDocument {
	if id == "" {
		id = generateDocumentID()
	}
	return &MutableDocument{id: id, props: NewDict()}
}

func (doc *MutableDocument) ID() string {
	return doc.id
}

func (doc *MutableDocument) Sequence() uint64 {
	return doc.seq
}

// Properties returns the live property dict; in-place edits through it are
// part of the document, no separate set call needed.
func (doc *MutableDocument) Properties() *Dict {
	return doc.props
}

func (doc *MutableDocument) Get(key string) Value {
	return doc.props.Get(key)
}

func (doc *MutableDocument) GetPath(path ...string) Value {
	return doc.props.GetPath(path...)
}

// Set stores a native literal (converted via ValueOf) under key.
func (doc *MutableDocument) Set(key string, value any) error {
	v, err := ValueOf(value)
	if err != nil {
		return err
	}
	return doc.props.Set(key, v)
}

// SetPath stores a native literal at a nested path, creating intermediate
// dicts as needed.
func (doc *MutableDocument) SetPath(value any, path ...string) error {
	v, err := ValueOf(value)
	if err != nil {
		return err
	}
	return doc.props.SetPath(v, path...)
}

// Remove deletes a property; removing an absent key is a no-op.
func (doc *MutableDocument) Remove(key string) error {
	return doc.props.Remove(key)
}

// Snapshot returns a frozen immutable copy of the document's current state.
func (doc *MutableDocument) Snapshot() *Document {
	props := doc.props.mutableCopy()
	props.freeze()
	return &Document{id: doc.id, seq: doc.seq, props: props}
}

func generateDocumentID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return "~" + hex.EncodeToString(buf[:])
}
