package util

import (
	"compress/gzip"
	"errors"
	"io"
)

// ErrBodyTooLarge is returned by a BodyReader once more than its maximum number of bytes were read.
var ErrBodyTooLarge = errors.New("max bytes exceeded")

// BodyReader reads a request body, optionally gunzipping it, and stops with ErrBodyTooLarge if the
// uncompressed content exceeds MaxBytes. The limit applies after decompression so that a small
// compressed payload cannot expand without bound.
type BodyReader struct {
	MaxBytes int64

	base         *countingReader
	limited      *io.LimitedReader
	uncompressed int64
}

// NewBodyReader wraps a request body. A maxBytes of zero or less means no limit; if there is also no
// compression, the original reader is returned.
func NewBodyReader(r io.ReadCloser, gzipped bool, maxBytes int64) (io.ReadCloser, error) {
	if !gzipped && maxBytes <= 0 {
		return r, nil
	}
	base := &countingReader{source: r}
	var source io.Reader = base
	if gzipped {
		gz, err := gzip.NewReader(base)
		if err != nil {
			return nil, err
		}
		if maxBytes <= 0 {
			return gz, nil
		}
		source = gz
	}
	return &BodyReader{
		MaxBytes: maxBytes,
		base:     base,
		limited:  &io.LimitedReader{R: source, N: maxBytes},
	}, nil
}

// BytesRead returns the number of bytes read from the underlying body.
func (b *BodyReader) BytesRead() int64 {
	return b.base.count
}

// UncompressedBytesRead returns the number of bytes returned to the caller so far.
func (b *BodyReader) UncompressedBytesRead() int64 {
	return b.uncompressed
}

func (b *BodyReader) Read(p []byte) (int, error) {
	n, err := b.limited.Read(p)
	b.uncompressed += int64(n)
	if err != nil {
		return n, err
	}
	if b.limited.N <= 0 {
		_ = b.Close()
		return n, ErrBodyTooLarge
	}
	return n, nil
}

// Close closes the underlying body.
func (b *BodyReader) Close() error {
	if c, ok := b.base.source.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type countingReader struct {
	source io.Reader
	count  int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.source.Read(p)
	c.count += int64(n)
	return n, err
}
