package writers

// Functions for writing save header data.
// Nothing in essdump writes save files; these mirror the readers so tests can build
// byte-exact fixtures and check that decoding gives back what was encoded.

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/pierrec/lz4/v4"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"essdump/types"
)

var ErrTooLong = errors.New("text too long for length prefix")

func Write_uint16_le(out io.Writer, i uint16) (int, error) {
	return out.Write(binary.LittleEndian.AppendUint16(nil, i))
}

func Write_int16_le(out io.Writer, i int16) (int, error) {
	return Write_uint16_le(out, uint16(i))
}

func Write_uint32_le(out io.Writer, i uint32) (int, error) {
	return out.Write(binary.LittleEndian.AppendUint32(nil, i))
}

func Write_int32_le(out io.Writer, i int32) (int, error) {
	return Write_uint32_le(out, uint32(i))
}

func Write_float32_le(out io.Writer, f float32) (int, error) {
	return Write_uint32_le(out, math.Float32bits(f))
}

// Encoder writes text in a given charset. The zero value uses Windows-1252.
type Encoder struct {
	Charset encoding.Encoding
}

func (e Encoder) encode(str string) ([]byte, error) {
	charset := e.Charset
	if charset == nil {
		charset = charmap.Windows1252
	}
	return charset.NewEncoder().Bytes([]byte(str))
}

// Write_fixed_text writes str into a fixed-length slot.
// Short strings are padded out with 0s; long ones are an error rather than being cut.
func (e Encoder) Write_fixed_text(out io.Writer, str string, length int) (int, error) {
	b, err := e.encode(str)
	if err != nil {
		return 0, err
	}
	if len(b) > length {
		return 0, fmt.Errorf("%q does not fit in %v bytes", str, length)
	}
	return out.Write(append(b, make([]byte, length-len(b))...))
}

// Write_length_prefixed_text writes an int16 byte count followed by the text.
func (e Encoder) Write_length_prefixed_text(out io.Writer, str string) (int, error) {
	b, err := e.encode(str)
	if err != nil {
		return 0, err
	}
	if len(b) > math.MaxInt16 {
		return 0, fmt.Errorf("%w: %v bytes", ErrTooLong, len(b))
	}
	n, err := Write_int16_le(out, int16(len(b)))
	if err != nil {
		return n, err
	}
	m, err := out.Write(b)
	return n + m, err
}

// EncodeRecord lays a record out in its own layout.
// The game title is padded (or must fit) to the fixed 13 bytes.
func (e Encoder) EncodeRecord(rec *types.SaveRecord) ([]byte, error) {
	if rec.Layout.HasPlayer() && rec.Player == nil {
		return nil, fmt.Errorf("layout %v needs player info", rec.Layout)
	}
	if rec.Layout == types.LAYOUT_FULL && rec.Details == nil {
		return nil, fmt.Errorf("layout %v needs header details", rec.Layout)
	}

	out := &bytes.Buffer{}
	// bytes.Buffer writes don't fail, so only text encoding errors need checking
	if _, err := e.Write_fixed_text(out, rec.GameTitle, types.GAME_TITLE_LENGTH); err != nil {
		return nil, err
	}
	Write_int32_le(out, rec.HeaderSize)
	Write_int32_le(out, rec.Version)
	Write_int32_le(out, rec.SaveNumber)

	if !rec.Layout.HasPlayer() {
		return out.Bytes(), nil
	}
	if _, err := e.Write_length_prefixed_text(out, rec.Player.Name); err != nil {
		return nil, err
	}
	Write_int32_le(out, rec.Player.Level)
	if _, err := e.Write_length_prefixed_text(out, rec.Player.Location); err != nil {
		return nil, err
	}

	if rec.Layout != types.LAYOUT_FULL {
		return out.Bytes(), nil
	}
	d := rec.Details
	for _, str := range []string{d.GameDate, d.RaceEditorID} {
		if _, err := e.Write_length_prefixed_text(out, str); err != nil {
			return nil, err
		}
	}
	Write_uint16_le(out, uint16(d.Sex))
	Write_float32_le(out, d.CurrentXP)
	Write_float32_le(out, d.LevelUpXP)
	Write_uint32_le(out, d.FileTime.Low)
	Write_uint32_le(out, d.FileTime.High)
	Write_uint32_le(out, d.ScreenshotWidth)
	Write_uint32_le(out, d.ScreenshotHeight)
	if types.HasCompression(rec.Version) {
		Write_uint16_le(out, d.CompressionType)
	}

	return out.Bytes(), nil
}

// EncodeBody lays out what follows a full header: blank screenshot data, then the plugin list.
// SE bodies get their two lengths and are compressed as rec's compression type says.
func (e Encoder) EncodeBody(rec *types.SaveRecord, info *types.PluginInfo) ([]byte, error) {
	if rec.Details == nil {
		return nil, fmt.Errorf("layout %v has no body", rec.Layout)
	}
	if len(info.Plugins) > math.MaxUint8 {
		return nil, fmt.Errorf("%v plugins, at most %v fit", len(info.Plugins), math.MaxUint8)
	}

	plugins := &bytes.Buffer{}
	plugins.WriteByte(info.FormVersion)
	Write_uint32_le(plugins, info.InfoSize)
	plugins.WriteByte(uint8(len(info.Plugins)))
	for _, name := range info.Plugins {
		if _, err := e.Write_length_prefixed_text(plugins, name); err != nil {
			return nil, err
		}
	}

	out := &bytes.Buffer{}
	out.Write(make([]byte, rec.ScreenshotSize()))
	if !rec.IsSE() {
		out.Write(plugins.Bytes())
		return out.Bytes(), nil
	}

	body, err := compress(rec.Details.CompressionType, plugins.Bytes())
	if err != nil {
		return nil, err
	}
	Write_uint32_le(out, uint32(plugins.Len()))
	Write_uint32_le(out, uint32(len(body)))
	out.Write(body)
	return out.Bytes(), nil
}

func compress(kind uint16, src []byte) ([]byte, error) {
	switch kind {
	case types.COMPRESSION_NONE:
		return src, nil
	case types.COMPRESSION_LZ4:
		out := make([]byte, lz4.CompressBlockBound(len(src)))
		n, err := lz4.CompressBlock(src, out, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, errors.New("body does not compress")
		}
		return out[:n], nil
	case types.COMPRESSION_ZLIB:
		buf := &bytes.Buffer{}
		w := zlib.NewWriter(buf)
		if _, err := w.Write(src); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown compression type %v", kind)
}
