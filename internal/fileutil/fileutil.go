// Package fileutil opens plain or compressed input files.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mholt/archiver/v3"
)

// Open opens the file at path for reading. Single-file compressed formats known by
// archiver (gz, bz2, xz, zst, lz4, sz, br) are decompressed on the fly.
//
// It is the caller's responsibility to call Close when done.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	format, err := archiver.ByExtension(path)
	if err != nil {
		// plain file
		return f, nil
	}

	dec, ok := format.(archiver.Decompressor)
	if !ok {
		f.Close()
		return nil, fmt.Errorf("%s: archive format %T is not supported", path, format)
	}

	pr, pw := io.Pipe()
	go func() {
		err := dec.Decompress(f, pw)
		f.Close()
		pw.CloseWithError(err)
	}()
	return pr, nil
}

// IsCompressed reports whether the filename has the extension of a known compression format.
func IsCompressed(path string) bool {
	format, err := archiver.ByExtension(path)
	if err != nil {
		return false
	}
	_, ok := format.(archiver.Decompressor)
	return ok
}

// TrimCompressionExt removes a compression extension, e.g. ".gz", from path.
func TrimCompressionExt(path string) string {
	if !IsCompressed(path) {
		return path
	}
	if idx := strings.LastIndex(path, "."); idx > 0 {
		return path[:idx]
	}
	return path
}
