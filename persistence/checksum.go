package persistence

import (
	"errors"
	"fmt"
	"hash/crc32"
)

// Checksums use CRC32 (IEEE polynomial): fast, hardware-accelerated on
// modern CPUs, and good at catching storage corruption. CRC32 is not
// cryptographically secure; it detects accidents, not tampering.

// Checksum computes the CRC32 checksum of data.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// ChecksumMismatchError is returned when a section's checksum does not
// match its recorded value.
type ChecksumMismatchError struct {
	Section  Section
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("%s checksum mismatch: expected 0x%08x, got 0x%08x", e.Section, e.Expected, e.Actual)
}

// IsChecksumMismatch reports whether err is (or wraps) a checksum mismatch.
func IsChecksumMismatch(err error) bool {
	var cme *ChecksumMismatchError
	return errors.As(err, &cme)
}
