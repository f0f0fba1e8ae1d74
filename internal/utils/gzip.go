package utils

import (
	"compress/gzip"
	"errors"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// gunzipBufferSize is the size of the buffer used to move data from the
// gzip stream into the destination file.
const gunzipBufferSize = 8192

// GunzipFile expands the gzip file at src into dst. Corruption in the
// compressed stream is reported as a *CodecError, operating system failures
// as an *IOError. On failure dst is removed, so a half written file is never
// left behind. On success dst is synced to disk before it is closed.
func GunzipFile(fs afero.Fs, src, dst string) (err error) {
	log.Debugf("Decompressing %s to %s", src, dst)
	srcF, err := fs.Open(src)
	if err != nil {
		return &IOError{Op: "open", Path: src, Err: err}
	}
	defer srcF.Close()

	dstF, err := fs.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return &IOError{Op: "create", Path: dst, Err: err}
	}
	defer func() {
		if closeErr := dstF.Close(); closeErr != nil && err == nil {
			err = &IOError{Op: "close", Path: dst, Err: closeErr}
		}
		if err != nil {
			if rmErr := RemoveIfExists(fs, dst); rmErr != nil {
				log.Warnf("Could not remove partial file %s: %v", dst, rmErr)
			}
		}
	}()

	gr, err := gzip.NewReader(&sourceReader{r: srcF})
	if err != nil {
		return classifyReadError(src, err)
	}
	defer gr.Close()

	buf := make([]byte, gunzipBufferSize)
	for {
		n, readErr := gr.Read(buf)
		if n > 0 {
			if _, err := dstF.Write(buf[:n]); err != nil {
				return &IOError{Op: "write", Path: dst, Err: err}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return classifyReadError(src, readErr)
		}
	}

	if err := dstF.Sync(); err != nil {
		return &IOError{Op: "sync", Path: dst, Err: err}
	}
	return nil
}

// sourceReader marks errors coming from the underlying file so they can be
// told apart from gzip decoding errors.
type sourceReader struct {
	r io.Reader
}

type sourceReadError struct {
	err error
}

func (e *sourceReadError) Error() string { return e.err.Error() }
func (e *sourceReadError) Unwrap() error { return e.err }

func (s *sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && err != io.EOF {
		err = &sourceReadError{err: err}
	}
	return n, err
}

func classifyReadError(src string, err error) error {
	var srcErr *sourceReadError
	if errors.As(err, &srcErr) {
		return &IOError{Op: "read", Path: src, Err: srcErr.err}
	}
	return &CodecError{Path: src, Err: err}
}
