package teal

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

// Backend is the durable keyed-byte substrate the engine sits on. It stores
// the id → record mapping plus two counters: the number of live documents
// and the last assigned sequence. Put and Purge commit atomically, including
// the counter updates; that single-commit shape is what a future
// optimistic-concurrency extension (ErrSaveConflict) will hang off.
//
// The engine serializes all calls that mutate counters, so implementations
// only need to be safe for concurrent Get.
type Backend interface {
	// Get returns the stored record for id, or (nil, nil) when absent.
	Get(id string) ([]byte, error)

	// Put atomically writes rec under id, persists seq as the last assigned
	// sequence, and adjusts the live-document count by liveDelta.
	Put(id string, rec []byte, seq uint64, liveDelta int) error

	// Purge atomically removes id entirely and adjusts the live count.
	Purge(id string, liveDelta int) error

	// State returns the persisted counters as of open plus any commits made
	// through this handle.
	State() (count uint64, lastSeq uint64)

	Close() error
}

var (
	bucketDocs = []byte("docs")
	bucketMeta = []byte("meta")

	metaCount   = []byte("count")
	metaLastSeq = []byte("seq")
)

// In-process registry of open backing paths. bbolt's flock covers other
// processes; this covers a second Open or a DeleteFile within ours.
var openPaths = struct {
	sync.Mutex
	m map[string]bool
}{m: make(map[string]bool)}

func reservePath(path string) bool {
	openPaths.Lock()
	defer openPaths.Unlock()
	if openPaths.m[path] {
		return false
	}
	openPaths.m[path] = true
	return true
}

func releasePath(path string) {
	openPaths.Lock()
	defer openPaths.Unlock()
	delete(openPaths.m, path)
}

func isPathOpen(path string) bool {
	openPaths.Lock()
	defer openPaths.Unlock()
	return openPaths.m[path]
}

type boltBackend struct {
	bdb     *bbolt.DB
	count   uint64
	lastSeq uint64
}

func openBackend(path string, cfg Configuration) (*boltBackend, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 250 * time.Millisecond
	if cfg.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 64
		bopt.FreelistType = bbolt.FreelistMapType
	}

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, openErrf(path, fmt.Errorf("%w: %v", ErrResourceBusy, err), "")
		}
		return nil, openErrf(path, err, "")
	}

	s := &boltBackend{bdb: bdb}
	err = bdb.Update(func(btx *bbolt.Tx) error {
		if _, err := btx.CreateBucketIfNotExists(bucketDocs); err != nil {
			return err
		}
		meta, err := btx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		s.count = metaUint64(meta, metaCount)
		s.lastSeq = metaUint64(meta, metaLastSeq)
		return nil
	})
	if err != nil {
		bdb.Close()
		return nil, openErrf(path, err, "preparing store")
	}
	return s, nil
}

func metaUint64(meta *bbolt.Bucket, key []byte) uint64 {
	raw := meta.Get(key)
	if len(raw) != 8 {
		return 0
	}
	d := makeByteDecoder(raw)
	v, _ := d.FixedUint64()
	return v
}

func putMetaUint64(meta *bbolt.Bucket, key []byte, v uint64) error {
	var bb bytesBuilder
	bb.AppendFixedUint64(v)
	return meta.Put(key, bb.Buf)
}

func (s *boltBackend) Get(id string) ([]byte, error) {
	var rec []byte
	err := s.bdb.View(func(btx *bbolt.Tx) error {
		// The returned slice is only valid inside the transaction.
		if raw := btx.Bucket(bucketDocs).Get([]byte(id)); raw != nil {
			rec = slices.Clone(raw)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", id, err)
	}
	return rec, nil
}

func (s *boltBackend) Put(id string, rec []byte, seq uint64, liveDelta int) error {
	err := s.bdb.Update(func(btx *bbolt.Tx) error {
		if err := btx.Bucket(bucketDocs).Put([]byte(id), rec); err != nil {
			return err
		}
		meta := btx.Bucket(bucketMeta)
		if err := putMetaUint64(meta, metaLastSeq, seq); err != nil {
			return err
		}
		return putMetaUint64(meta, metaCount, addDelta(s.count, liveDelta))
	})
	if err != nil {
		return fmt.Errorf("writing %q: %w", id, err)
	}
	s.lastSeq = seq
	s.count = addDelta(s.count, liveDelta)
	return nil
}

func (s *boltBackend) Purge(id string, liveDelta int) error {
	err := s.bdb.Update(func(btx *bbolt.Tx) error {
		if err := btx.Bucket(bucketDocs).Delete([]byte(id)); err != nil {
			return err
		}
		return putMetaUint64(btx.Bucket(bucketMeta), metaCount, addDelta(s.count, liveDelta))
	})
	if err != nil {
		return fmt.Errorf("purging %q: %w", id, err)
	}
	s.count = addDelta(s.count, liveDelta)
	return nil
}

func (s *boltBackend) State() (count uint64, lastSeq uint64) {
	return s.count, s.lastSeq
}

func (s *boltBackend) Close() error {
	return s.bdb.Close()
}

func addDelta(v uint64, delta int) uint64 {
	if delta < 0 {
		return v - uint64(-delta)
	}
	return v + uint64(delta)
}
