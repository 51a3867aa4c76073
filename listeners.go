package teal

import (
	"slices"
	"sync"
)

// Change notifications. A database listener receives the ids of changed
// documents; a document listener watches a single id. By default listeners
// fire synchronously from the mutating call. BufferNotifications switches to
// scheduled delivery: changes accumulate, the ready callback fires when the
// first one arrives, and SendNotifications delivers the batch.

// ListenerToken represents a registered listener. Remove unregisters it;
// removing twice is harmless.
type ListenerToken struct {
	remove func()
	once   sync.Once
}

func (t *ListenerToken) Remove() {
	t.once.Do(t.remove)
}

type notifier struct {
	mu           sync.Mutex
	nextID       int
	dbListeners  map[int]func(ids []string)
	docListeners map[string]map[int]func(id string)

	buffering bool
	ready     func()
	pending   []string
}

// AddChangeListener registers a callback invoked with the ids of documents
// changed by Save and DeleteDocument.
func (db *Database) AddChangeListener(fn func(ids []string)) *ListenerToken {
	return db.notifier.addDBListener(fn)
}

// AddDocumentChangeListener registers a callback invoked whenever the
// document with the given id changes.
func (db *Database) AddDocumentChangeListener(id string, fn func(id string)) *ListenerToken {
	return db.notifier.addDocListener(id, fn)
}

// BufferNotifications defers listener callbacks until SendNotifications is
// called. The ready callback fires once when a batch first becomes
// non-empty.
func (db *Database) BufferNotifications(ready func()) {
	db.notifier.mu.Lock()
	defer db.notifier.mu.Unlock()
	db.notifier.buffering = true
	db.notifier.ready = ready
}

// SendNotifications delivers any buffered changes. A no-op when nothing is
// pending.
func (db *Database) SendNotifications() {
	db.notifier.flush()
}

func (n *notifier) addDBListener(fn func(ids []string)) *ListenerToken {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.dbListeners == nil {
		n.dbListeners = make(map[int]func(ids []string))
	}
	id := n.nextID
	n.nextID++
	n.dbListeners[id] = fn
	return &ListenerToken{remove: func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.dbListeners, id)
	}}
}

func (n *notifier) addDocListener(docID string, fn func(id string)) *ListenerToken {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.docListeners == nil {
		n.docListeners = make(map[string]map[int]func(id string))
	}
	if n.docListeners[docID] == nil {
		n.docListeners[docID] = make(map[int]func(id string))
	}
	id := n.nextID
	n.nextID++
	n.docListeners[docID][id] = fn
	return &ListenerToken{remove: func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.docListeners[docID], id)
	}}
}

// note records a change and either dispatches immediately or buffers it.
func (n *notifier) note(docID string) {
	n.mu.Lock()
	if n.buffering {
		first := len(n.pending) == 0
		if !slices.Contains(n.pending, docID) {
			n.pending = append(n.pending, docID)
		}
		ready := n.ready
		n.mu.Unlock()
		if first && ready != nil {
			ready()
		}
		return
	}
	calls := n.snapshot([]string{docID})
	n.mu.Unlock()
	for _, call := range calls {
		call()
	}
}

func (n *notifier) flush() {
	n.mu.Lock()
	if len(n.pending) == 0 {
		n.mu.Unlock()
		return
	}
	ids := n.pending
	n.pending = nil
	calls := n.snapshot(ids)
	n.mu.Unlock()
	for _, call := range calls {
		call()
	}
}

// snapshot binds the matching callbacks into thunks so they can run after
// the lock is released.
func (n *notifier) snapshot(ids []string) []func() {
	var calls []func()
	for _, fn := range n.dbListeners {
		fn := fn
		calls = append(calls, func() { fn(ids) })
	}
	for _, id := range ids {
		for _, fn := range n.docListeners[id] {
			fn, id := fn, id
			calls = append(calls, func() { fn(id) })
		}
	}
	return calls
}
