// Package integrity computes content hashes of database files and checks
// downloaded archives before they are expanded.
package integrity

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// ZeroMD5 is the hash reported for a database that does not exist locally. It
// is also what the update server expects when there is nothing to compare
// against.
const ZeroMD5 = "00000000000000000000000000000000"

// hashBufferSize is the size of the chunk read from the file on every hash
// iteration.
const hashBufferSize = 2048

// HashFile returns the lowercase hex MD5 digest of the file at path. If the
// file does not exist ZeroMD5 is returned. A path that exists but is not a
// regular file is an error.
func HashFile(fs afero.Fs, path string) (string, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ZeroMD5, nil
		}
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}

	f, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ZeroMD5, nil
		}
		return "", err
	}
	defer f.Close()

	h := md5.New()
	buf := make([]byte, hashBufferSize)
	// Hide any WriterTo implementation so the copy goes through buf.
	if _, err := io.CopyBuffer(h, struct{ io.Reader }{f}, buf); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsValidHash reports whether s looks like an MD5 hex digest.
func IsValidHash(s string) bool {
	if len(s) != md5.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// IsZero reports whether hash is the absent-file sentinel.
func IsZero(hash string) bool {
	return strings.EqualFold(hash, ZeroMD5)
}
