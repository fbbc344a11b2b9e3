package readers

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"

	"essdump/types"
)

// TraceEvent describes one field read, successful or not.
type TraceEvent struct {
	Field  types.Field
	Offset int // where the field started
	Size   int // bytes consumed, including any length prefix
	Value  any
	Err    error
}

// Tracer receives a TraceEvent for every field the decoder attempts.
type Tracer func(TraceEvent)

type decodeOptions struct {
	tracer  Tracer
	charset encoding.Encoding
}

type DecodeOption func(*decodeOptions)

func WithTracer(t Tracer) DecodeOption {
	return func(o *decodeOptions) {
		o.tracer = t
	}
}

// WithTextCharset sets the text encoding for cursors created by DecodeBytes and LoadFile.
// Decode itself uses whatever charset its cursor was built with.
func WithTextCharset(charset encoding.Encoding) DecodeOption {
	return func(o *decodeOptions) {
		o.charset = charset
	}
}

func makeOptions(opts []DecodeOption) decodeOptions {
	o := decodeOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ParseLayout maps a layout name (as used in config files and flags) to a Layout.
func ParseLayout(name string) (types.Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "legacy":
		return types.LAYOUT_LEGACY, nil
	case "withplayer", "with_player", "player":
		return types.LAYOUT_WITH_PLAYER, nil
	case "full":
		return types.LAYOUT_FULL, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayout, name)
}

// Decode reads one SaveRecord from the cursor, field by field in layout order.
// The first failing field aborts the decode with a *FieldError; no record is returned in that case.
func Decode(c *Cursor, layout types.Layout, opts ...DecodeOption) (*types.SaveRecord, error) {
	if layout < 0 || layout >= types.LAYOUT_COUNT {
		return nil, fmt.Errorf("%w: %v", ErrUnknownLayout, layout)
	}
	o := makeOptions(opts)

	rec := &types.SaveRecord{Layout: layout}
	if layout.HasPlayer() {
		rec.Player = &types.PlayerInfo{}
	}
	if layout == types.LAYOUT_FULL {
		rec.Details = &types.HeaderDetails{}
	}

	for _, field := range layout.Fields() {
		if field == types.FIELD_COMPRESSION {
			if !types.HasCompression(rec.Version) {
				continue
			}
			rec.Details.HasCompression = true
		}

		if err := o.traced(c, field, func() (any, error) {
			return readField(c, field, rec)
		}); err != nil {
			return nil, err
		}
	}

	rec.End = c.Position()
	return rec, nil
}

// traced runs one field read, reports it to the tracer and ties any failure to the field.
func (o decodeOptions) traced(c *Cursor, field types.Field, read func() (any, error)) error {
	start := c.Position()
	value, err := read()
	if o.tracer != nil {
		o.tracer(TraceEvent{Field: field, Offset: start, Size: c.Position() - start, Value: value, Err: err})
	}
	if err != nil {
		return &FieldError{Field: field, Offset: start, Err: err}
	}
	return nil
}

// readField reads a single field into rec and returns the value read, for tracing.
func readField(c *Cursor, field types.Field, rec *types.SaveRecord) (any, error) {
	var err error
	switch field {
	case types.FIELD_GAME_TITLE:
		rec.GameTitle, err = c.ReadFixedText(types.GAME_TITLE_LENGTH)
		return rec.GameTitle, err
	case types.FIELD_HEADER_SIZE:
		rec.HeaderSize, err = c.ReadInt32LE()
		return rec.HeaderSize, err
	case types.FIELD_VERSION:
		rec.Version, err = c.ReadInt32LE()
		return rec.Version, err
	case types.FIELD_SAVE_NUMBER:
		rec.SaveNumber, err = c.ReadInt32LE()
		return rec.SaveNumber, err

	case types.FIELD_PLAYER_NAME:
		rec.Player.Name, err = c.ReadLengthPrefixedText()
		return rec.Player.Name, err
	case types.FIELD_PLAYER_LEVEL:
		rec.Player.Level, err = c.ReadInt32LE()
		return rec.Player.Level, err
	case types.FIELD_PLAYER_LOCATION:
		rec.Player.Location, err = c.ReadLengthPrefixedText()
		return rec.Player.Location, err

	case types.FIELD_GAME_DATE:
		rec.Details.GameDate, err = c.ReadLengthPrefixedText()
		return rec.Details.GameDate, err
	case types.FIELD_RACE:
		rec.Details.RaceEditorID, err = c.ReadLengthPrefixedText()
		return rec.Details.RaceEditorID, err
	case types.FIELD_SEX:
		var sex uint16
		sex, err = c.ReadUint16LE()
		rec.Details.Sex = types.Sex(sex)
		return rec.Details.Sex, err
	case types.FIELD_CURRENT_XP:
		rec.Details.CurrentXP, err = c.ReadFloat32LE()
		return rec.Details.CurrentXP, err
	case types.FIELD_LEVEL_UP_XP:
		rec.Details.LevelUpXP, err = c.ReadFloat32LE()
		return rec.Details.LevelUpXP, err
	case types.FIELD_FILETIME:
		// Both halves or nothing
		var b []byte
		b, err = c.ReadBytes(8)
		if err != nil {
			return nil, err
		}
		rec.Details.FileTime.Low = binary.LittleEndian.Uint32(b)
		rec.Details.FileTime.High = binary.LittleEndian.Uint32(b[4:])
		return rec.Details.FileTime, nil
	case types.FIELD_SCREENSHOT_WIDTH:
		rec.Details.ScreenshotWidth, err = c.ReadUint32LE()
		return rec.Details.ScreenshotWidth, err
	case types.FIELD_SCREENSHOT_HEIGHT:
		rec.Details.ScreenshotHeight, err = c.ReadUint32LE()
		return rec.Details.ScreenshotHeight, err
	case types.FIELD_COMPRESSION:
		rec.Details.CompressionType, err = c.ReadUint16LE()
		return rec.Details.CompressionType, err
	}

	return nil, fmt.Errorf("no reader for field %v", field)
}

// DecodeBytes decodes a record from buf using a fresh cursor.
func DecodeBytes(buf []byte, layout types.Layout, opts ...DecodeOption) (*types.SaveRecord, error) {
	o := makeOptions(opts)
	return Decode(NewCursor(buf, WithCharset(o.charset)), layout, opts...)
}

// ResolvePath joins name onto root, unless name is already absolute.
func ResolvePath(root string, name string) string {
	if filepath.IsAbs(name) || root == "" {
		return name
	}
	return filepath.Join(root, name)
}

func read_file(root string, name string) ([]byte, error) {
	path := ResolvePath(root, name)
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return buf, nil
}

// LoadFile reads a whole save file (relative to root) into memory and decodes it.
func LoadFile(root string, name string, layout types.Layout, opts ...DecodeOption) (*types.SaveRecord, error) {
	buf, err := read_file(root, name)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(buf, layout, opts...)
}

// LoadSave is LoadFile for the full layout, followed by the plugin list.
func LoadSave(root string, name string, opts ...DecodeOption) (*types.SaveRecord, *types.PluginInfo, error) {
	buf, err := read_file(root, name)
	if err != nil {
		return nil, nil, err
	}
	return DecodeSave(buf, opts...)
}
