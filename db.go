package teal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Database is an open handle to a named document store. It owns its Backend
// exclusively; two live handles on the same path are refused with
// ErrResourceBusy.
//
// All mutating operations (Save, DeleteDocument, PurgeDocument, Close) are
// serialized by a single mutex guarding the sequence counter and the backend
// handle. Reads snapshot the handle under the mutex and then proceed
// concurrently.
type Database struct {
	name    string
	dir     string
	path    string
	logf    func(format string, args ...any)
	verbose bool

	mu      sync.Mutex
	backend Backend
	closed  bool
	count   uint64
	lastSeq uint64

	notifier notifier
}

// Open opens the database at <directory>/<name> + FileExtension, creating
// the backing store (and the directory) if absent. Fails with an OpenError
// on permission or corruption problems, and with ErrResourceBusy when the
// path is already open.
func Open(name string, cfg Configuration) (*Database, error) {
	if name == "" {
		return nil, errors.New("database name must not be empty")
	}
	if cfg.Directory == "" {
		return nil, errors.New("configuration must carry a directory")
	}

	path := DatabasePath(name, cfg.Directory)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	if err := os.MkdirAll(cfg.Directory, 0777); err != nil {
		return nil, openErrf(path, err, "creating directory")
	}
	if !reservePath(path) {
		return nil, openErrf(path, ErrResourceBusy, "")
	}

	backend, err := openBackend(path, cfg)
	if err != nil {
		releasePath(path)
		return nil, err
	}

	db := &Database{
		name:    name,
		dir:     cfg.Directory,
		path:    path,
		logf:    cfg.Logf,
		verbose: cfg.Verbose,
		backend: backend,
	}
	db.count, db.lastSeq = backend.State()
	db.logvf("opened %s (count=%d seq=%d)", path, db.count, db.lastSeq)
	return db, nil
}

// DeleteFile removes the backing store of the named database if it exists;
// a missing file-set is a no-op, not an error. Fails with ErrResourceBusy
// while the same path is open in this process.
func DeleteFile(name, directory string) error {
	path := DatabasePath(name, directory)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if isPathOpen(path) {
		return fmt.Errorf("%w: %s", ErrResourceBusy, path)
	}
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", path, err)
	}
	return nil
}

func (db *Database) Name() string {
	return db.name
}

func (db *Database) Directory() string {
	return db.dir
}

func (db *Database) Path() string {
	return db.path
}

// Count returns the number of live (non-deleted) documents.
func (db *Database) Count() uint64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.count
}

// LastSequence returns the highest sequence number ever assigned in this
// store.
func (db *Database) LastSequence() uint64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.lastSeq
}

// GetDocument returns an immutable snapshot of the document with the given
// id, or (nil, nil) when no live document has that id.
func (db *Database) GetDocument(id string) (*Document, error) {
	rec, err := db.load(id)
	if err != nil || rec == nil || rec.deleted {
		return nil, err
	}
	rec.props.freeze()
	return &Document{id: id, seq: rec.seq, props: rec.props}, nil
}

// GetMutableDocument returns an editable copy of the document with the given
// id, or (nil, nil) when no live document has that id. The database is not
// affected until the copy is saved.
func (db *Database) GetMutableDocument(id string) (*MutableDocument, error) {
	rec, err := db.load(id)
	if err != nil || rec == nil || rec.deleted {
		return nil, err
	}
	return &MutableDocument{id: id, seq: rec.seq, props: rec.props}, nil
}

func (db *Database) load(id string) (*record, error) {
	backend, err := db.acquire()
	if err != nil {
		return nil, err
	}
	raw, err := backend.Get(id)
	if err != nil || raw == nil {
		return nil, err
	}
	rec, err := decodeRecord(raw)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// acquire snapshots the backend handle, failing once the database is closed.
func (db *Database) acquire() (Backend, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, ErrDatabaseClosed
	}
	return db.backend, nil
}

// Save commits a mutable document: assigns lastSequence+1, writes the
// serialized property tree under the document's id, and bumps the count if
// the id was not previously live. On success the passed document's sequence
// is updated to the new value. The commit, including both counters, is a
// single atomic backend operation.
func (db *Database) Save(doc *MutableDocument) error {
	if doc == nil || doc.id == "" {
		return errors.New("cannot save a document without an id")
	}
	if err := db.save(doc); err != nil {
		return err
	}
	// Listener callbacks run outside the database mutex so they may call
	// back into the database.
	db.notifier.note(doc.id)
	return nil
}

func (db *Database) save(doc *MutableDocument) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrDatabaseClosed
	}

	live, err := db.isLive(doc.id)
	if err != nil {
		return err
	}
	delta := 0
	if !live {
		delta = 1
	}
	seq := db.lastSeq + 1
	rec, err := encodeRecord(seq, false, doc.props)
	if err != nil {
		return err
	}
	if err := db.backend.Put(doc.id, rec, seq, delta); err != nil {
		return err
	}
	db.lastSeq = seq
	db.count = addDelta(db.count, delta)
	doc.seq = seq

	db.logvf("saved %q seq=%d", doc.id, seq)
	return nil
}

// DeleteDocument removes the live document with the given id by writing a
// tombstone. The deletion consumes a sequence number, keeping the counter
// strictly monotonic across all mutations. Fails with ErrNotFound when no
// live document has that id.
func (db *Database) DeleteDocument(id string) error {
	if err := db.deleteDocument(id); err != nil {
		return err
	}
	db.notifier.note(id)
	return nil
}

func (db *Database) deleteDocument(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrDatabaseClosed
	}

	live, err := db.isLive(id)
	if err != nil {
		return err
	}
	if !live {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	seq := db.lastSeq + 1
	rec, err := encodeRecord(seq, true, nil)
	if err != nil {
		return err
	}
	if err := db.backend.Put(id, rec, seq, -1); err != nil {
		return err
	}
	db.lastSeq = seq
	db.count--

	db.logvf("deleted %q seq=%d", id, seq)
	return nil
}

// PurgeDocument removes every trace of a document, tombstone included,
// without consuming a sequence number. Fails with ErrNotFound when the id
// has no record at all.
func (db *Database) PurgeDocument(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrDatabaseClosed
	}

	raw, err := db.backend.Get(id)
	if err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	_, deleted, err := decodeRecordMeta(raw)
	if err != nil {
		return err
	}
	delta := 0
	if !deleted {
		delta = -1
	}
	if err := db.backend.Purge(id, delta); err != nil {
		return err
	}
	db.count = addDelta(db.count, delta)

	db.logvf("purged %q", id)
	return nil
}

// isLive reports whether id currently has a non-tombstone record. Caller
// must hold db.mu.
func (db *Database) isLive(id string) (bool, error) {
	raw, err := db.backend.Get(id)
	if err != nil || raw == nil {
		return false, err
	}
	_, deleted, err := decodeRecordMeta(raw)
	if err != nil {
		return false, err
	}
	return !deleted, nil
}

// Close releases the backend handle. Closing an already-closed database is
// a no-op; every other operation afterwards fails with ErrDatabaseClosed.
func (db *Database) Close() error {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return nil
	}
	db.closed = true
	backend := db.backend
	db.backend = nil
	db.mu.Unlock()

	releasePath(db.path)
	db.logvf("closed %s", db.path)
	if err := backend.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", db.path, err)
	}
	return nil
}

func (db *Database) logvf(format string, args ...any) {
	if db.verbose && db.logf != nil {
		db.logf(format, args...)
	}
}
