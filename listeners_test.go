package teal

import (
	"slices"
	"testing"
)

func createDocument(t testing.TB, db *Database, id, key, value string) {
	t.Helper()
	doc := NewMutableDocument(id)
	must0(t, doc.Set(key, value))
	must0(t, db.Save(doc))
}

func TestChangeListeners(t *testing.T) {
	db := setup(t)

	var dbCalls, fooCalls int
	dbToken := db.AddChangeListener(func(ids []string) {
		dbCalls++
		if !slices.Equal(ids, []string{"foo"}) {
			t.Errorf("listener ids = %v, wanted [foo]", ids)
		}
	})
	fooToken := db.AddDocumentChangeListener("foo", func(id string) {
		fooCalls++
		if id != "foo" {
			t.Errorf("document listener id = %q", id)
		}
	})

	createDocument(t, db, "foo", "greeting", "Howdy!")
	if dbCalls != 1 || fooCalls != 1 {
		t.Fatalf("calls = (%d, %d), wanted (1, 1)", dbCalls, fooCalls)
	}

	// After removal, listeners stay silent.
	dbToken.Remove()
	fooToken.Remove()
	dbCalls, fooCalls = 0, 0
	createDocument(t, db, "bar", "greeting", "yo.")
	if dbCalls != 0 || fooCalls != 0 {
		t.Errorf("removed listeners called: (%d, %d)", dbCalls, fooCalls)
	}
}

func TestListenerFiresOnDelete(t *testing.T) {
	db := setup(t)
	createDocument(t, db, "foo", "greeting", "Howdy!")

	var calls int
	db.AddDocumentChangeListener("foo", func(id string) { calls++ })
	must0(t, db.DeleteDocument("foo"))
	if calls != 1 {
		t.Errorf("calls after delete = %d, wanted 1", calls)
	}
}

func TestTokenRemoveIsIdempotent(t *testing.T) {
	db := setup(t)
	token := db.AddChangeListener(func([]string) { t.Errorf("should not fire") })
	token.Remove()
	token.Remove()
	createDocument(t, db, "foo", "greeting", "Howdy!")
}

func TestBufferedNotifications(t *testing.T) {
	db := setup(t)

	var dbCalls, fooCalls, barCalls, readyCalls int
	db.AddChangeListener(func(ids []string) {
		dbCalls++
		if !slices.Equal(ids, []string{"foo", "bar"}) {
			t.Errorf("batched ids = %v, wanted [foo bar]", ids)
		}
	})
	db.AddDocumentChangeListener("foo", func(string) { fooCalls++ })
	db.AddDocumentChangeListener("bar", func(string) { barCalls++ })
	db.BufferNotifications(func() { readyCalls++ })

	// No listener fires while buffering.
	createDocument(t, db, "foo", "greeting", "Howdy!")
	if dbCalls != 0 || fooCalls != 0 || barCalls != 0 {
		t.Fatalf("listeners fired while buffering")
	}
	if readyCalls != 1 {
		t.Fatalf("readyCalls = %d, wanted 1 after first change", readyCalls)
	}

	createDocument(t, db, "bar", "greeting", "yo.")
	if readyCalls != 1 {
		t.Errorf("readyCalls = %d, ready should fire once per batch", readyCalls)
	}

	db.SendNotifications()
	if dbCalls != 1 || fooCalls != 1 || barCalls != 1 {
		t.Errorf("calls after send = (%d, %d, %d), wanted (1, 1, 1)", dbCalls, fooCalls, barCalls)
	}

	// Nothing pending: sending again is a no-op.
	db.SendNotifications()
	if dbCalls != 1 || fooCalls != 1 || barCalls != 1 {
		t.Errorf("extra notifications delivered")
	}
}

func TestListenerMayUseDatabase(t *testing.T) {
	db := setup(t)
	db.AddChangeListener(func(ids []string) {
		// Callbacks run outside the database mutex.
		if got := must(db.GetDocument("foo")); got == nil {
			t.Errorf("saved document not visible from listener")
		}
	})
	createDocument(t, db, "foo", "greeting", "Howdy!")
}
