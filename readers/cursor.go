package readers

import (
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// DefaultCharset is used for all text unless overridden.
// Skyrim writes its strings as Windows-1252; plain ASCII passes through unchanged.
var DefaultCharset encoding.Encoding = charmap.Windows1252

// Cursor reads typed values out of an in-memory buffer, front to back.
// The buffer is borrowed and never modified.
// A Cursor belongs to one decode; it is not safe for concurrent use.
type Cursor struct {
	buf     []byte
	pos     int
	charset encoding.Encoding
}

type CursorOption func(*Cursor)

// WithCharset sets the encoding used for text reads.
func WithCharset(charset encoding.Encoding) CursorOption {
	return func(c *Cursor) {
		if charset != nil {
			c.charset = charset
		}
	}
}

func NewCursor(buf []byte, opts ...CursorOption) *Cursor {
	c := &Cursor{buf: buf, charset: DefaultCharset}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Position returns the offset of the next unread byte.
func (c *Cursor) Position() int {
	return c.pos
}

// Len returns the size of the whole buffer.
func (c *Cursor) Len() int {
	return len(c.buf)
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// ReadBytes returns the next n bytes and advances past them.
// The returned slice aliases the buffer.
// On error the position is unchanged.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, &OutOfBoundsError{Offset: c.pos, Want: n, Have: c.Remaining()}
	}
	out := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return out, nil
}

func (c *Cursor) ReadUint8() (uint8, error) {
	b, err := c.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) ReadUint16LE() (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) ReadInt16LE() (int16, error) {
	u, err := c.ReadUint16LE()
	return int16(u), err
}

func (c *Cursor) ReadUint32LE() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) ReadInt32LE() (int32, error) {
	u, err := c.ReadUint32LE()
	return int32(u), err
}

func (c *Cursor) ReadFloat32LE() (float32, error) {
	u, err := c.ReadUint32LE()
	return math.Float32frombits(u), err
}

// ReadFixedText reads n bytes of text. Padding and NULs are kept as they are.
func (c *Cursor) ReadFixedText(n int) (string, error) {
	start := c.pos
	b, err := c.ReadBytes(n)
	if err != nil {
		return "", err
	}
	text, err := c.charset.NewDecoder().Bytes(b)
	if err != nil {
		c.pos = start
		return "", fmt.Errorf("decoding %v bytes of text at offset %v: %w", n, start, err)
	}
	return string(text), nil
}

// ReadLengthPrefixedText reads an int16 little-endian byte count followed by that much text.
// These are the save format's "wstring"s: despite the name they are single-byte text, not UTF-16.
func (c *Cursor) ReadLengthPrefixedText() (string, error) {
	start := c.pos
	length, err := c.ReadInt16LE()
	if err != nil {
		return "", err
	}
	if length < 0 {
		return "", &NegativeLengthError{Offset: start, Length: length}
	}
	return c.ReadFixedText(int(length))
}
