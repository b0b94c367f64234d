// Package digest computes the content fingerprints recorded in a baseline.
//
// Files are streamed through SHA-256 in fixed-size chunks, so hashing a
// multi-gigabyte binary costs the same memory as hashing a one-line config.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/jamesainslie/fim/pkg/fim/logging"
)

// ChunkSize is the read buffer size used while streaming file contents.
const ChunkSize = 8192

// PrefixLen is the number of hex characters shown for a digest in reports.
const PrefixLen = 16

// Func computes the digest of the file at path.
// The second return value is false when the file could not be read.
type Func func(path string) (string, bool)

var logger = logging.Get("digest")

// File returns the hex-encoded SHA-256 of the file at path.
// Open and read failures are not returned as errors: the file is reported
// as unreadable with ok == false and the caller decides what that means.
func File(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		logger.Debug("cannot open file", "path", path, "err", err)
		return "", false
	}
	defer f.Close()

	sum, err := Reader(f)
	if err != nil {
		logger.Debug("cannot read file", "path", path, "err", err)
		return "", false
	}
	return sum, true
}

// Reader returns the hex-encoded SHA-256 of everything read from r.
func Reader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, ChunkSize)
	if _, err := io.CopyBuffer(h, onlyReader{r}, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Prefix returns the first PrefixLen characters of d, or d itself if shorter.
func Prefix(d string) string {
	if len(d) <= PrefixLen {
		return d
	}
	return d[:PrefixLen]
}

// onlyReader hides WriterTo on *os.File so io.CopyBuffer honours buf.
type onlyReader struct {
	io.Reader
}
