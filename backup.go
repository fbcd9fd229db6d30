package vectorlite

import (
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/vectorlite/vectorlite/persistence"
)

// Backup streams a zstd-compressed snapshot of the current in-memory state
// to w. The backup reflects unflushed mutations; when the database is clean
// it decompresses to the exact bytes of the database file.
func (db *DB) Backup(w io.Writer) error {
	if db.closed {
		return ErrClosed
	}

	stamp := db.modified.Unix()
	if db.dirty {
		stamp = time.Now().Unix()
	}
	snap := db.table.Snapshot(stamp)

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if _, err := snap.WriteTo(enc); err != nil {
		enc.Close()
		return fmt.Errorf("write backup: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flush backup: %w", err)
	}
	return nil
}

// Restore decompresses a backup produced by Backup, validates it and writes
// it to path atomically. The backup must decode without warnings; a damaged
// backup fails with ErrCorrupt or ErrInvalidFormat and leaves any existing
// file at path untouched. Restore does not open the database; use Open
// afterwards.
func Restore(r io.Reader, path string) error {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	if _, err := persistence.DecodeStrict(data); err != nil {
		return translateError(err)
	}

	write := func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	}
	return persistence.SaveToFile(path, write, nil)
}
