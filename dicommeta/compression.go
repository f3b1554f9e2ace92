package dicommeta

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"

	"github.com/carbocation/pfx"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type compression byte

const (
	compressionNone compression = iota
	compressionGzip
	compressionZip
	compressionXZ
	compressionBZip2
)

// Byte code signatures from https://stackoverflow.com/a/19127748/199475. A
// DICOM file starts with a 128 byte preamble (usually zeroes) followed by
// "DICM", so none of these collide with an uncompressed file.
var compressionSigs = []struct {
	kind compression
	sig  []byte
}{
	{compressionGzip, []byte{0x1f, 0x8b, 0x08}},
	{compressionZip, []byte{0x50, 0x4b, 0x03, 0x04}},
	{compressionXZ, []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}},
	{compressionBZip2, []byte{0x42, 0x5a, 0x68}},
}

func sniffCompression(head []byte) compression {
	for _, v := range compressionSigs {
		if bytes.HasPrefix(head, v.sig) {
			return v.kind
		}
	}

	return compressionNone
}

// Open opens a representative file, transparently decompressing it if the
// archive stored it gzipped, zipped, xz'd or bzip2'd. Closing the returned
// reader closes the file.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	head := make([]byte, 6)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		f.Close()
		return nil, pfx.Err(err)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, pfx.Err(err)
	}

	switch sniffCompression(head[:n]) {
	case compressionGzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, pfx.Err(err)
		}
		return &stackedReadCloser{Reader: gz, closers: []io.Closer{gz, f}}, nil
	case compressionZip:
		// Only the first member of a zipped representative is read
		zr := zipstream.NewReader(f)
		if _, err := zr.Next(); err != nil {
			f.Close()
			return nil, pfx.Err(err)
		}
		return &stackedReadCloser{Reader: zr, closers: []io.Closer{f}}, nil
	case compressionXZ:
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			f.Close()
			return nil, pfx.Err(err)
		}
		return &stackedReadCloser{Reader: xzr, closers: []io.Closer{f}}, nil
	case compressionBZip2:
		return &stackedReadCloser{Reader: bzip2.NewReader(f), closers: []io.Closer{f}}, nil
	}

	return f, nil
}

// stackedReadCloser closes the decompressor and then the file underneath it.
type stackedReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedReadCloser) Close() error {
	var firstErr error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
