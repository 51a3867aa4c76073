package teal

import "errors"

// WithDatabase opens the named database, runs fn against it, and closes the
// handle on every exit path: normal return, error, or panic (the panic is
// re-raised after the close). A close failure is joined to fn's error.
func WithDatabase(name string, cfg Configuration, fn func(db *Database) error) (err error) {
	db, err := Open(name, cfg)
	if err != nil {
		return err
	}
	defer func() {
		cerr := db.Close()
		if cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(db)
}
