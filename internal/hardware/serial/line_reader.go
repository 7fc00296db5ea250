package serial

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxLineLength is used when NewLineReader gets a non-positive bound.
const DefaultMaxLineLength = 256

// readChunkSize is the size of a single Read from the port.
const readChunkSize = 64

// ErrLineTooLong is returned by Poll when an unterminated line outgrows the
// bound. The buffered bytes are dropped and everything up to the next
// newline is skipped.
var ErrLineTooLong = errors.New("line exceeds maximum length")

// LineReader splits a polled byte stream into newline-terminated lines.
// Bytes of a line whose terminator has not arrived yet stay buffered between
// polls. LineReader is not safe for concurrent use.
type LineReader struct {
	// src is the underlying stream, normally a serial port with a read timeout.
	src io.Reader
	// buf holds received bytes that are not yet returned.
	buf []byte
	// chunk is the scratch buffer for a single Read.
	chunk []byte
	// maxLength bounds the unterminated tail of buf.
	maxLength int
	// skipping is set after an overflow until the next newline.
	skipping bool
}

// NewLineReader returns a LineReader over src.
func NewLineReader(src io.Reader, maxLength int) *LineReader {
	if maxLength <= 0 {
		maxLength = DefaultMaxLineLength
	}

	return &LineReader{
		src:       src,
		buf:       make([]byte, 0, maxLength),
		chunk:     make([]byte, readChunkSize),
		maxLength: maxLength,
	}
}

// Poll returns the next complete line without its terminator.
// It performs at most one Read on the source, so it returns after the
// source's read timeout when nothing arrives. ok is false when no complete
// line is available yet. A timed-out read (io.EOF with no data) is not an
// error.
func (r *LineReader) Poll() (line string, ok bool, err error) {
	if line, ok = r.next(); ok {
		return line, true, nil
	}

	n, readErr := r.src.Read(r.chunk)
	if n > 0 {
		r.buf = append(r.buf, r.chunk[:n]...)
	}

	if readErr != nil && !errors.Is(readErr, io.EOF) {
		return "", false, fmt.Errorf("read serial: %w", readErr)
	}

	if line, ok = r.next(); ok {
		return line, true, nil
	}

	if len(r.buf) > r.maxLength {
		r.buf = r.buf[:0]
		r.skipping = true

		return "", false, ErrLineTooLong
	}

	return "", false, nil
}

// Buffered returns the number of bytes waiting for a terminator.
func (r *LineReader) Buffered() int {
	return len(r.buf)
}

// next extracts one complete line from buf.
func (r *LineReader) next() (string, bool) {
	for {
		idx := bytes.IndexByte(r.buf, '\n')
		if idx < 0 {
			if r.skipping {
				r.buf = r.buf[:0]
			}

			return "", false
		}

		line := string(r.buf[:idx])
		r.buf = append(r.buf[:0], r.buf[idx+1:]...)

		if r.skipping {
			r.skipping = false

			continue
		}

		return line, true
	}
}
