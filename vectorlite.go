package vectorlite

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/vectorlite/vectorlite/distance"
	"github.com/vectorlite/vectorlite/metadata"
	"github.com/vectorlite/vectorlite/persistence"
	"github.com/vectorlite/vectorlite/table"
)

// SearchResult is one search hit: record id, metric score and a copy of the
// record's metadata (nil when the record has none).
type SearchResult = table.Result

// Record is one stored record, as returned by Get. Vector and Metadata are
// copies.
type Record struct {
	ID       string
	Vector   []float32
	Metadata metadata.Document
}

// Warning describes a non-fatal problem noticed while opening a database:
// a block recovered after corruption, or a configured dimension/metric that
// conflicts with the file and was ignored.
type Warning struct {
	// Source is the snapshot section that was recovered ("index",
	// "vectors", "metadata") or "config" for ignored options.
	Source string
	Err    error
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	return w.Source + ": " + w.Err.Error()
}

// Stats is a point-in-time summary of a database.
type Stats struct {
	Records    int             // live records
	Tombstones int             // freed slots awaiting reuse
	Capacity   int             // arena slots, tombstones included
	Dimension  int             // vector dimensionality
	Metric     distance.Metric // similarity metric
	Modified   time.Time       // last successful save
	FileSize   int64           // database file size in bytes
}

// DB is an open database: the in-memory table plus the file that persists
// it. Obtain one with Open and release it with Close.
type DB struct {
	path    string
	opts    options
	logger  *Logger
	metrics MetricsCollector

	table    *table.Table
	file     *os.File
	warnings []Warning
	modified time.Time
	dirty    bool
	closed   bool
}

// Open opens the database file at path, creating it when it does not exist.
//
// Creating requires WithDimension; the metric defaults to cosine and parent
// directories are created as needed. Opening an existing file takes
// dimension and metric from the stored header: conflicting options are
// ignored and reported through Warnings, as is any block-level corruption
// that recovery worked around. A file with a bad magic number or an
// unreadable header fails with ErrInvalidFormat or ErrCorrupt.
//
// The database holds an open handle on the file until Close.
func Open(path string, optFns ...Option) (*DB, error) {
	o := applyOptions(optFns)
	db := &DB{
		path:    path,
		opts:    o,
		logger:  o.logger,
		metrics: o.metrics,
	}

	snap, blockWarnings, err := persistence.LoadSnapshotFromFile(path)
	switch {
	case err == nil:
		err = db.adopt(snap, blockWarnings)
	case errors.Is(err, fs.ErrNotExist) && !o.readOnly:
		err = db.create()
	default:
		err = translateError(err)
	}
	if err != nil {
		db.logger.LogOpen(path, 0, 0, err)
		return nil, err
	}

	db.file, err = os.Open(path)
	if err != nil {
		db.logger.LogOpen(path, 0, 0, err)
		return nil, err
	}

	db.logger.LogOpen(path, db.table.Len(), len(db.warnings), nil)
	return db, nil
}

// adopt builds the table from a loaded snapshot and collects warnings.
func (db *DB) adopt(snap *persistence.Snapshot, blockWarnings []persistence.Warning) error {
	tbl, err := table.Restore(snap)
	if err != nil {
		return translateError(err)
	}
	db.table = tbl
	db.modified = time.Unix(snap.Modified, 0)

	for _, w := range blockWarnings {
		db.warnings = append(db.warnings, Warning{Source: w.Section.String(), Err: w.Err})
		db.logger.LogRecovery(w.Section.String(), w.Err)
	}

	// The stored header wins over options; a conflict is worth reporting
	// but never an error.
	if db.opts.dimension != 0 && db.opts.dimension != tbl.Dimension() {
		db.warnings = append(db.warnings, Warning{
			Source: "config",
			Err:    &DimensionMismatchError{Expected: tbl.Dimension(), Actual: db.opts.dimension},
		})
		db.logger.Warn("configured dimension ignored",
			"stored", tbl.Dimension(),
			"requested", db.opts.dimension,
		)
	}
	if db.opts.metricSet && db.opts.metric != tbl.Metric() {
		db.warnings = append(db.warnings, Warning{
			Source: "config",
			Err:    fmt.Errorf("configured metric %s ignored, file stores %s", db.opts.metric, tbl.Metric()),
		})
		db.logger.Warn("configured metric ignored",
			"stored", tbl.Metric().String(),
			"requested", db.opts.metric.String(),
		)
	}
	return nil
}

// create materializes a new empty database file.
func (db *DB) create() error {
	if db.opts.dimension == 0 {
		return ErrMissingDimension
	}
	tbl, err := table.New(db.opts.metric, db.opts.dimension)
	if err != nil {
		return err
	}
	now := time.Now()
	if err := tbl.Snapshot(now.Unix()).SaveToFile(db.path); err != nil {
		return translateError(err)
	}
	db.table = tbl
	db.modified = now
	return nil
}

// Insert adds or replaces a record. An existing id is overwritten in place:
// same slot, vector and metadata replaced. The vector length must match the
// database dimension; validation failures mutate nothing.
func (db *DB) Insert(id string, vector []float32, doc metadata.Document) error {
	start := time.Now()
	err := db.insert(id, vector, doc)
	db.metrics.RecordInsert(time.Since(start), err)
	db.logger.LogInsert(id, len(vector), err)
	return err
}

func (db *DB) insert(id string, vector []float32, doc metadata.Document) error {
	if db.closed {
		return ErrClosed
	}
	if db.opts.readOnly {
		return ErrReadOnly
	}
	if err := db.table.Insert(id, vector, doc); err != nil {
		return translateError(err)
	}
	db.dirty = true
	if db.opts.autoFlush {
		return db.flush()
	}
	return nil
}

// Delete removes the record with the given id, or returns ErrNotFound. The
// record's slot is reused by a later insert.
func (db *DB) Delete(id string) error {
	start := time.Now()
	err := db.delete(id)
	db.metrics.RecordDelete(time.Since(start), err)
	db.logger.LogDelete(id, err)
	return err
}

func (db *DB) delete(id string) error {
	if db.closed {
		return ErrClosed
	}
	if db.opts.readOnly {
		return ErrReadOnly
	}
	if err := db.table.Delete(id); err != nil {
		return translateError(err)
	}
	db.dirty = true
	if db.opts.autoFlush {
		return db.flush()
	}
	return nil
}

// Len returns the number of live records, or 0 after Close.
func (db *DB) Len() int {
	if db.closed {
		return 0
	}
	return db.table.Len()
}

// Compact rewrites the arena without tombstones and persists the result.
// Records keep their ids; slots are reassigned contiguously.
func (db *DB) Compact() error {
	if db.closed {
		return ErrClosed
	}
	if db.opts.readOnly {
		return ErrReadOnly
	}
	reclaimed := db.table.Compact()
	if reclaimed > 0 {
		db.dirty = true
	}
	var err error
	if db.dirty {
		err = db.flush()
	}
	db.logger.LogCompact(reclaimed, err)
	return err
}

// Stats returns a point-in-time summary of the database, or the zero Stats
// after Close.
func (db *DB) Stats() Stats {
	if db.closed {
		return Stats{}
	}
	st := Stats{
		Records:    db.table.Len(),
		Tombstones: db.table.Tombstones(),
		Capacity:   db.table.Capacity(),
		Dimension:  db.table.Dimension(),
		Metric:     db.table.Metric(),
		Modified:   db.modified,
	}
	if info, err := os.Stat(db.path); err == nil {
		st.FileSize = info.Size()
	}
	return st
}

// Warnings returns the problems recovery and configuration checks noticed
// while opening the database. The slice is a copy.
func (db *DB) Warnings() []Warning {
	out := make([]Warning, len(db.warnings))
	copy(out, db.warnings)
	return out
}
