package readers

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"math"

	"github.com/pierrec/lz4/v4"

	"essdump/types"
)

// LZ4 blocks never expand data by more than this factor.
const max_lz4_ratio = 255

// DecodeSave decodes a full header and the plugin list after it.
func DecodeSave(buf []byte, opts ...DecodeOption) (*types.SaveRecord, *types.PluginInfo, error) {
	o := makeOptions(opts)
	c := NewCursor(buf, WithCharset(o.charset))
	rec, err := Decode(c, types.LAYOUT_FULL, opts...)
	if err != nil {
		return nil, nil, err
	}
	plugins, err := ReadPlugins(c, rec, opts...)
	if err != nil {
		return nil, nil, err
	}
	return rec, plugins, nil
}

// ReadPlugins reads the plugin list that follows a full header.
// c must sit at rec.End, as Decode leaves it.
//
// SE saves carry their body lengths after the screenshot, and the body itself may be compressed.
// Offsets of errors inside a compressed body are relative to the decompressed body.
func ReadPlugins(c *Cursor, rec *types.SaveRecord, opts ...DecodeOption) (*types.PluginInfo, error) {
	if rec.Details == nil {
		return nil, fmt.Errorf("%w: plugins follow the %v layout only", ErrNoDetails, types.LAYOUT_FULL)
	}
	o := makeOptions(opts)

	if err := o.traced(c, types.FIELD_SCREENSHOT_DATA, func() (any, error) {
		size := rec.ScreenshotSize()
		if size > uint64(c.Remaining()) {
			return nil, out_of_bounds(c, size)
		}
		_, err := c.ReadBytes(int(size))
		return size, err
	}); err != nil {
		return nil, err
	}

	body := c
	if rec.IsSE() {
		var uncompressed, compressed uint32
		if err := o.traced(c, types.FIELD_UNCOMPRESSED_LENGTH, func() (v any, err error) {
			uncompressed, err = c.ReadUint32LE()
			return uncompressed, err
		}); err != nil {
			return nil, err
		}
		if err := o.traced(c, types.FIELD_COMPRESSED_LENGTH, func() (v any, err error) {
			compressed, err = c.ReadUint32LE()
			return compressed, err
		}); err != nil {
			return nil, err
		}

		if kind := rec.Details.CompressionType; kind != types.COMPRESSION_NONE {
			if err := o.traced(c, types.FIELD_BODY, func() (any, error) {
				if uint64(compressed) > uint64(c.Remaining()) {
					return nil, out_of_bounds(c, uint64(compressed))
				}
				src, err := c.ReadBytes(int(compressed))
				if err != nil {
					return nil, err
				}
				out, err := decompress(kind, src, uncompressed)
				if err != nil {
					return nil, fmt.Errorf("%w: %w", ErrDecompress, err)
				}
				body = NewCursor(out, WithCharset(c.charset))
				return len(out), nil
			}); err != nil {
				return nil, err
			}
		}
	}

	return read_plugin_info(body, o)
}

// out_of_bounds reports a read of want bytes, which may not fit in an int, at the cursor.
func out_of_bounds(c *Cursor, want uint64) error {
	return &OutOfBoundsError{Offset: c.Position(), Want: int(min(want, math.MaxInt)), Have: c.Remaining()}
}

func read_plugin_info(c *Cursor, o decodeOptions) (*types.PluginInfo, error) {
	info := &types.PluginInfo{}
	var count uint8

	if err := o.traced(c, types.FIELD_FORM_VERSION, func() (v any, err error) {
		info.FormVersion, err = c.ReadUint8()
		return info.FormVersion, err
	}); err != nil {
		return nil, err
	}
	if err := o.traced(c, types.FIELD_PLUGIN_INFO_SIZE, func() (v any, err error) {
		info.InfoSize, err = c.ReadUint32LE()
		return info.InfoSize, err
	}); err != nil {
		return nil, err
	}
	if err := o.traced(c, types.FIELD_PLUGIN_COUNT, func() (v any, err error) {
		count, err = c.ReadUint8()
		return count, err
	}); err != nil {
		return nil, err
	}

	if err := o.traced(c, types.FIELD_PLUGINS, func() (any, error) {
		plugins := make([]string, 0, count)
		for i := range int(count) {
			name, err := c.ReadLengthPrefixedText()
			if err != nil {
				return nil, fmt.Errorf("plugin %v of %v: %w", i+1, count, err)
			}
			plugins = append(plugins, name)
		}
		info.Plugins = plugins
		return plugins, nil
	}); err != nil {
		return nil, err
	}

	return info, nil
}

// decompress unpacks a save body of the given compression type into size bytes.
func decompress(kind uint16, src []byte, size uint32) ([]byte, error) {
	switch kind {
	case types.COMPRESSION_LZ4:
		if uint64(size) > uint64(len(src))*max_lz4_ratio+16 {
			return nil, fmt.Errorf("%v bytes cannot unpack to %v", len(src), size)
		}
		out := make([]byte, size)
		n, err := lz4.UncompressBlock(src, out)
		if err != nil {
			return nil, err
		}
		return out[:n], nil
	case types.COMPRESSION_ZLIB:
		r, err := zlib.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(io.LimitReader(r, int64(size)))
	}
	return nil, fmt.Errorf("unknown compression type %v", kind)
}
