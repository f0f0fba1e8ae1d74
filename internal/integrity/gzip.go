package integrity

import (
	"bytes"
	"io"

	"github.com/spf13/afero"
)

var gzipMagic = []byte{0x1f, 0x8b}

// LooksLikeGzip reports whether the file at path starts with the gzip magic
// number. Only the first two bytes are read. Missing files, short files and
// read errors all report false.
func LooksLikeGzip(fs afero.Fs, path string) bool {
	f, err := fs.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, len(gzipMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	return bytes.Equal(head, gzipMagic)
}
