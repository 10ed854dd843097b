// Package fingerprint computes content hashes used to detect changed documents.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"unicode/utf8"

	seekerrors "github.com/Aman-CERP/txtseek/internal/errors"
)

// Failed is the fingerprint recorded for a document that could not be read.
// It never equals a real digest, so a document that becomes readable forces
// a rebuild. One that stays unreadable keeps matching.
const Failed = ""

// Reader is the part of the directory collaborator the fingerprinter needs.
type Reader interface {
	Read(path string) ([]byte, error)
}

// Result is a read-and-hashed document.
type Result struct {
	Path        string
	Fingerprint string
	Content     []byte
}

// Sum returns the lowercase hex SHA-256 of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// File reads path through r and fingerprints it. On failure it returns a
// ReadError and a Result carrying the Failed fingerprint and no content.
func File(r Reader, path string) (Result, error) {
	data, err := r.Read(path)
	if err != nil {
		return Result{Path: path, Fingerprint: Failed}, seekerrors.ReadError(path, err)
	}
	if !utf8.Valid(data) {
		cause := fmt.Errorf("content is not valid UTF-8")
		return Result{Path: path, Fingerprint: Failed},
			seekerrors.New(seekerrors.ErrCodeFileEncoding, fmt.Sprintf("cannot decode %s", path), cause).
				WithDetail("path", path)
	}
	return Result{Path: path, Fingerprint: Sum(data), Content: data}, nil
}

// Current recomputes the fingerprint of path, returning Failed when it cannot
// be read. exists is false once the file is gone, so a deleted document never
// matches even if it was recorded as unreadable. Used to validate a snapshot
// without tokenizing.
func Current(r Reader, path string) (fp string, exists bool) {
	res, err := File(r, path)
	if err != nil {
		return Failed, !errors.Is(err, fs.ErrNotExist)
	}
	return res.Fingerprint, true
}
