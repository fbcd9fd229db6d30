package persistence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// fileBufferSize batches reads and writes of snapshot files.
const fileBufferSize = 256 * 1024

// SaveToFile atomically replaces filename with the bytes produced by write.
//
// The data is written to a temp file in the target directory, flushed and
// fsynced, re-read through verify, and only then renamed over the target.
// On any failure the previous file is untouched and the temp file removed.
// Missing parent directories are created.
func SaveToFile(filename string, write func(io.Writer) error, verify func(io.Reader) error) error {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	// Temp file in the same directory so the rename is atomic.
	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	// Match typical file permissions (best-effort).
	_ = tmp.Chmod(0o644)

	buf := bufio.NewWriterSize(tmp, fileBufferSize)
	if err := write(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}

	// Re-read what actually hit the disk before it replaces the target.
	if verify != nil {
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return err
		}
		if err := verify(bufio.NewReaderSize(tmp, fileBufferSize)); err != nil {
			return fmt.Errorf("save verification failed: %w", err)
		}
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: keep the deferred cleanup away from the final file.
	tmpName = ""
	return nil
}

// LoadFromFile opens filename and hands a buffered reader to read.
func LoadFromFile(filename string, read func(io.Reader) error) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	return read(bufio.NewReaderSize(f, fileBufferSize))
}

// SaveToFile writes the snapshot to filename with verification: the temp
// file is decoded strictly before it replaces the target, so a bad write
// can never clobber a good snapshot.
func (s *Snapshot) SaveToFile(filename string) error {
	return SaveToFile(filename,
		func(w io.Writer) error {
			_, err := s.WriteTo(w)
			return err
		},
		func(r io.Reader) error {
			data, err := io.ReadAll(r)
			if err != nil {
				return err
			}
			_, err = DecodeStrict(data)
			return err
		})
}

// LoadSnapshotFromFile reads and decodes a snapshot file, surfacing any
// recovery warnings alongside the snapshot.
func LoadSnapshotFromFile(filename string) (*Snapshot, []Warning, error) {
	var (
		snap     *Snapshot
		warnings []Warning
	)
	err := LoadFromFile(filename, func(r io.Reader) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		s, w, err := ReadSnapshot(data)
		if err != nil {
			return err
		}
		snap, warnings = s, w
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return snap, warnings, nil
}
