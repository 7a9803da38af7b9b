// Copyright (c) 2024 Elisamuel Resto Donate <sam@samresto.dev>
// SPDX-License-Identifier: MIT

// Package wire implements the DNS wire-format codec: byte cursor,
// names with compression, the resource-record taxonomy, and the
// message envelope. It is pure over its input and never performs I/O.
package wire

import "errors"

// ErrFormat is returned whenever the wire codec encounters malformed
// or truncated input. Callers treat it as a format error per RFC 1035.
var ErrFormat = errors.New("wire: format error")

// Cursor is a positioned reader/writer over a bounded octet buffer.
//
// A Cursor created with NewCursor owns its buffer and grows without
// bound as data is written; one created with NewCursorFromBytes
// borrows a received buffer and never resizes it. occs records the
// first-seen offset of each name (by its textual form) written during
// encoding, so later occurrences can be replaced with a compression
// pointer.
type Cursor struct {
	buf  []byte
	pos  int
	occs map[string]int
}

// NewCursor creates an empty, owned Cursor for encoding a message.
func NewCursor() *Cursor {
	return &Cursor{occs: make(map[string]int)}
}

// NewCursorFromBytes creates a Cursor borrowing buf for decoding.
func NewCursorFromBytes(buf []byte) *Cursor {
	return &Cursor{buf: buf, occs: make(map[string]int)}
}

// Pos returns the current position in the buffer.
func (c *Cursor) Pos() int { return c.pos }

// Used returns the slice of the buffer written or read so far.
func (c *Cursor) Used() []byte { return c.buf[:c.pos] }

// Seek moves the cursor to an absolute position.
func (c *Cursor) Seek(pos int) { c.pos = pos }

func (c *Cursor) remainder() []byte { return c.buf[c.pos:] }

// Read returns the next byte and advances the cursor.
func (c *Cursor) Read() (byte, error) {
	if len(c.remainder()) == 0 {
		return 0, ErrFormat
	}
	b := c.buf[c.pos]
	c.pos++
	return b, nil
}

// Peek returns the next byte without advancing the cursor.
func (c *Cursor) Peek() (byte, error) {
	if len(c.remainder()) == 0 {
		return 0, ErrFormat
	}
	return c.buf[c.pos], nil
}

// ReadExact reads n bytes and advances the cursor.
func (c *Cursor) ReadExact(n int) ([]byte, error) {
	if len(c.remainder()) < n {
		return nil, ErrFormat
	}
	out := make([]byte, n)
	copy(out, c.buf[c.pos:c.pos+n])
	c.pos += n
	return out, nil
}

// ReadUint16 reads a big-endian u16.
func (c *Cursor) ReadUint16() (uint16, error) {
	b, err := c.ReadExact(2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// ReadUint32 reads a big-endian u32.
func (c *Cursor) ReadUint32() (uint32, error) {
	b, err := c.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), nil
}

// WriteByte appends a byte, growing the owned buffer.
func (c *Cursor) WriteByte(b byte) {
	if c.pos < len(c.buf) {
		c.buf[c.pos] = b
	} else {
		c.buf = append(c.buf, b)
	}
	c.pos++
}

// WriteAll appends bytes.
func (c *Cursor) WriteAll(b []byte) {
	for _, v := range b {
		c.WriteByte(v)
	}
}

// WriteUint16 appends a big-endian u16.
func (c *Cursor) WriteUint16(v uint16) {
	c.WriteAll([]byte{byte(v >> 8), byte(v)})
}

// WriteUint32 appends a big-endian u32.
func (c *Cursor) WriteUint32(v uint32) {
	c.WriteAll([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

// SetUint16 overwrites a previously reserved two-byte slot at pos.
// Used to back-patch rdlength after the payload has been written.
func (c *Cursor) SetUint16(pos int, v uint16) {
	c.buf[pos] = byte(v >> 8)
	c.buf[pos+1] = byte(v)
}

// FindFirstOcc returns the recorded offset of name's textual form, if any.
func (c *Cursor) FindFirstOcc(name string) (int, bool) {
	off, ok := c.occs[name]
	return off, ok
}

// SetFirstOcc records the offset of name's first textual occurrence.
func (c *Cursor) SetFirstOcc(name string, pos int) {
	c.occs[name] = pos
}
