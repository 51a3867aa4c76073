package teal

import (
	"errors"
	"testing"
)

func TestWithDatabaseClosesOnReturn(t *testing.T) {
	dir := t.TempDir()
	cfg := Configuration{Directory: dir, IsTesting: true}

	var held *Database
	err := WithDatabase("db", cfg, func(db *Database) error {
		held = db
		return db.Save(NewMutableDocument("foo"))
	})
	if err != nil {
		t.Fatalf("WithDatabase: %v", err)
	}
	if _, err := held.GetDocument("foo"); !errors.Is(err, ErrDatabaseClosed) {
		t.Errorf("handle still open after scope exit: %v", err)
	}
}

func TestWithDatabaseClosesOnError(t *testing.T) {
	dir := t.TempDir()
	cfg := Configuration{Directory: dir, IsTesting: true}

	boom := errors.New("boom")
	err := WithDatabase("db", cfg, func(db *Database) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, wanted boom", err)
	}

	// The path must be released: a fresh open succeeds.
	db := must(Open("db", cfg))
	db.Close()
}

func TestWithDatabaseClosesOnPanic(t *testing.T) {
	dir := t.TempDir()
	cfg := Configuration{Directory: dir, IsTesting: true}

	func() {
		defer func() {
			if p := recover(); p == nil {
				t.Fatalf("panic did not propagate")
			}
		}()
		WithDatabase("db", cfg, func(db *Database) error {
			panic("boom")
		})
	}()

	db := must(Open("db", cfg))
	db.Close()
}

func TestWithDatabasePropagatesOpenError(t *testing.T) {
	err := WithDatabase("db", Configuration{}, func(db *Database) error {
		t.Fatalf("fn should not run when open fails")
		return nil
	})
	if err == nil {
		t.Fatalf("expected error for missing directory")
	}
}
