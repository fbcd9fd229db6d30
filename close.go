package vectorlite

import (
	"os"
	"time"
)

// Flush writes the current state to the database file, whether or not
// anything changed since the last save. Flushing after a recovery warning
// persists the repaired state.
func (db *DB) Flush() error {
	if db.closed {
		return ErrClosed
	}
	if db.opts.readOnly {
		return ErrReadOnly
	}
	return db.flush()
}

// flush saves unconditionally and re-acquires the file handle: the save
// replaced the inode under the old one.
func (db *DB) flush() error {
	start := time.Now()
	err := db.save()
	if err == nil {
		err = db.reacquire()
	}
	db.metrics.RecordFlush(time.Since(start), err)
	db.logger.LogFlush(db.path, db.table.Len(), err)
	return err
}

func (db *DB) save() error {
	now := time.Now()
	if err := db.table.Snapshot(now.Unix()).SaveToFile(db.path); err != nil {
		return translateError(err)
	}
	db.modified = now
	db.dirty = false
	return nil
}

func (db *DB) reacquire() error {
	f, err := os.Open(db.path)
	if err != nil {
		return err
	}
	if db.file != nil {
		_ = db.file.Close()
	}
	db.file = f
	return nil
}

// Close flushes pending state (unless the database is read-only or clean)
// and releases the file handle. Close is idempotent: second and later calls
// return nil without flushing again.
func (db *DB) Close() error {
	if db == nil || db.closed {
		return nil
	}
	db.closed = true

	var firstErr error
	if db.dirty && !db.opts.readOnly {
		if err := db.flush(); err != nil {
			firstErr = err
		}
	}
	if db.file != nil {
		if err := db.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		db.file = nil
	}
	return firstErr
}
