package types

import (
	"fmt"
	"time"
)

// Layout selects the field sequence used to decode a save header.
type Layout int

const (
	LAYOUT_LEGACY      Layout = iota // title, header size, version, save number
	LAYOUT_WITH_PLAYER               // legacy + player name, level, location
	LAYOUT_FULL                      // with player + the rest of the header block

	LAYOUT_COUNT
)

func (l Layout) String() string {
	if l < 0 || l >= LAYOUT_COUNT {
		return fmt.Sprintf("Layout(%d)", int(l))
	}
	return []string{"legacy", "withPlayer", "full"}[l]
}

// HasPlayer reports whether the layout carries the player block.
func (l Layout) HasPlayer() bool {
	return l == LAYOUT_WITH_PLAYER || l == LAYOUT_FULL
}

// Field identifies one decoded value, in file order.
type Field int

const (
	FIELD_GAME_TITLE Field = iota
	FIELD_HEADER_SIZE
	FIELD_VERSION
	FIELD_SAVE_NUMBER
	FIELD_PLAYER_NAME
	FIELD_PLAYER_LEVEL
	FIELD_PLAYER_LOCATION
	FIELD_GAME_DATE
	FIELD_RACE
	FIELD_SEX
	FIELD_CURRENT_XP
	FIELD_LEVEL_UP_XP
	FIELD_FILETIME
	FIELD_SCREENSHOT_WIDTH
	FIELD_SCREENSHOT_HEIGHT
	FIELD_COMPRESSION

	// Body fields, read by the plugin reader after a full header
	FIELD_SCREENSHOT_DATA
	FIELD_UNCOMPRESSED_LENGTH
	FIELD_COMPRESSED_LENGTH
	FIELD_BODY
	FIELD_FORM_VERSION
	FIELD_PLUGIN_INFO_SIZE
	FIELD_PLUGIN_COUNT
	FIELD_PLUGINS

	FIELD_COUNT
)

var field_names = []string{
	"gameTitle", "headerSize", "version", "saveNumber",
	"playerName", "playerLevel", "playerLocation",
	"gameDate", "playerRaceEditorId", "playerSex", "playerCurrentXp", "playerLevelUpXp",
	"filetime", "screenshotWidth", "screenshotHeight", "compressionType",
	"screenshotData", "uncompressedLength", "compressedLength", "body",
	"formVersion", "pluginInfoSize", "pluginCount", "plugins",
}

func (f Field) String() string {
	if f < 0 || f >= FIELD_COUNT {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return field_names[f]
}

// Fields returns the field sequence of the layout.
// FIELD_COMPRESSION is listed for LAYOUT_FULL but only present in SE saves (see HasCompression).
func (l Layout) Fields() []Field {
	last := FIELD_SAVE_NUMBER
	switch l {
	case LAYOUT_WITH_PLAYER:
		last = FIELD_PLAYER_LOCATION
	case LAYOUT_FULL:
		last = FIELD_COMPRESSION
	}

	out := make([]Field, 0, last+1)
	for f := FIELD_GAME_TITLE; f <= last; f++ {
		out = append(out, f)
	}
	return out
}

const (
	GAME_TITLE_LENGTH = 13

	// Bytes taken by the fixed part of the header: title + 3 int32s.
	LEGACY_SIZE = GAME_TITLE_LENGTH + 3*4

	// Saves from this version on (Special Edition) carry a compression type.
	SE_VERSION = 12
)

const (
	COMPRESSION_NONE = 0
	COMPRESSION_ZLIB = 1 // never seen for the body, apparently only change forms
	COMPRESSION_LZ4  = 2
)

// HasCompression reports whether a header of the given version carries the compression type.
func HasCompression(version int32) bool {
	return version >= SE_VERSION
}

type Sex uint16

const (
	SEX_MALE Sex = iota
	SEX_FEMALE
)

func (s Sex) String() string {
	switch s {
	case SEX_MALE:
		return "Male"
	case SEX_FEMALE:
		return "Female"
	}
	return fmt.Sprintf("Undefined (%d)", uint16(s))
}

// FileTime is a Windows FILETIME: 100ns ticks since 1601-01-01 UTC, stored low half first.
type FileTime struct {
	Low  uint32
	High uint32
}

func (ft FileTime) Ticks() uint64 {
	return uint64(ft.High)<<32 | uint64(ft.Low)
}

// Ticks between 1601-01-01 and the unix epoch.
const filetime_epoch_delta = 116444736000000000

// Time converts the FILETIME to a time.Time. The zero FileTime converts to the zero time.
func (ft FileTime) Time() time.Time {
	ticks := ft.Ticks()
	if ticks == 0 {
		return time.Time{}
	}
	unix100ns := int64(ticks) - filetime_epoch_delta
	return time.Unix(unix100ns/1e7, (unix100ns%1e7)*100).UTC()
}

// PlayerInfo is the player block that follows the fixed header.
type PlayerInfo struct {
	Name     string
	Level    int32
	Location string
}

// HeaderDetails holds the rest of the header block (LAYOUT_FULL only).
type HeaderDetails struct {
	GameDate         string
	RaceEditorID     string
	Sex              Sex
	CurrentXP        float32
	LevelUpXP        float32
	FileTime         FileTime
	ScreenshotWidth  uint32
	ScreenshotHeight uint32

	// Only meaningful when HasCompression is true
	HasCompression  bool
	CompressionType uint16
}

// SaveRecord is the decoded header of one save file.
// Decoders only hand out records whose layout was read to the end.
type SaveRecord struct {
	Layout Layout

	GameTitle  string
	HeaderSize int32
	Version    int32
	SaveNumber int32

	// nil for LAYOUT_LEGACY
	Player *PlayerInfo
	// nil unless LAYOUT_FULL
	Details *HeaderDetails

	// Offset one past the last byte decoded
	End int
}

// IsSE reports whether the save came from the Special Edition.
func (sr *SaveRecord) IsSE() bool {
	return HasCompression(sr.Version)
}

// ScreenshotSize is the number of bytes of screenshot data that follow the header.
// SE screenshots are RGBA, older ones RGB. Zero without header details.
func (sr *SaveRecord) ScreenshotSize() uint64 {
	if sr.Details == nil {
		return 0
	}
	bpp := uint64(3)
	if sr.IsSE() {
		bpp = 4
	}
	return uint64(sr.Details.ScreenshotWidth) * uint64(sr.Details.ScreenshotHeight) * bpp
}

// PlayerName returns the player name, or "" when the layout had no player block.
func (sr *SaveRecord) PlayerName() string {
	if sr.Player == nil {
		return ""
	}
	return sr.Player.Name
}

// PluginInfo is the plugin list at the start of the save body.
type PluginInfo struct {
	FormVersion uint8
	InfoSize    uint32 // as stored; covers the count byte and the names
	Plugins     []string
}
