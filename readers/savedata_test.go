package readers

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"essdump/types"
	"essdump/writers"
)

// legacyHeader builds the 25 fixed bytes: "TestGameXXXXX", 100, 2, 7.
func legacyHeader() []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("TestGameXXXXX")
	writers.Write_int32_le(buf, 100)
	writers.Write_int32_le(buf, 2)
	writers.Write_int32_le(buf, 7)
	return buf.Bytes()
}

func withPlayerHeader() []byte {
	buf := bytes.NewBuffer(legacyHeader())
	writers.Write_int16_le(buf, 4)
	buf.WriteString("Bob0")
	writers.Write_int32_le(buf, 10)
	writers.Write_int16_le(buf, 5)
	buf.WriteString("Cave0")
	return buf.Bytes()
}

func TestDecode_Legacy(t *testing.T) {
	buf := legacyHeader()
	require.Len(t, buf, types.LEGACY_SIZE)

	c := NewCursor(buf)
	rec, err := Decode(c, types.LAYOUT_LEGACY)
	require.NoError(t, err)
	require.Equal(t, &types.SaveRecord{
		Layout:     types.LAYOUT_LEGACY,
		GameTitle:  "TestGameXXXXX",
		HeaderSize: 100,
		Version:    2,
		SaveNumber: 7,
		End:        25,
	}, rec)
	require.Equal(t, 25, c.Position())
	require.Nil(t, rec.Player)
	require.Equal(t, "", rec.PlayerName())
}

func TestDecode_WithPlayer(t *testing.T) {
	c := NewCursor(withPlayerHeader())
	rec, err := Decode(c, types.LAYOUT_WITH_PLAYER)
	require.NoError(t, err)

	require.Equal(t, "TestGameXXXXX", rec.GameTitle)
	require.Equal(t, &types.PlayerInfo{Name: "Bob0", Level: 10, Location: "Cave0"}, rec.Player)
	require.Equal(t, 25+2+4+4+2+5, c.Position())
	require.Equal(t, c.Position(), rec.End)
}

func TestDecode_TruncatedAtGameTitle(t *testing.T) {
	// 10 bytes can't hold the 13 byte title, which is never cut short
	_, err := DecodeBytes(legacyHeader()[:10], types.LAYOUT_LEGACY)
	require.ErrorIs(t, err, ErrOutOfBounds)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, types.FIELD_GAME_TITLE, fe.Field)
	require.Equal(t, 0, fe.Offset)
}

func TestDecode_TruncatedAtHeaderSize(t *testing.T) {
	_, err := DecodeBytes(legacyHeader()[:15], types.LAYOUT_LEGACY)
	require.ErrorIs(t, err, ErrOutOfBounds)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, types.FIELD_HEADER_SIZE, fe.Field)
	require.Equal(t, 13, fe.Offset)
}

func TestDecode_EveryShortBufferFails(t *testing.T) {
	for _, tc := range []struct {
		layout types.Layout
		buf    []byte
	}{
		{types.LAYOUT_LEGACY, legacyHeader()},
		{types.LAYOUT_WITH_PLAYER, withPlayerHeader()},
	} {
		for n := 0; n < len(tc.buf); n++ {
			rec, err := DecodeBytes(tc.buf[:n], tc.layout)
			require.ErrorIs(t, err, ErrOutOfBounds, "layout %v, %v bytes", tc.layout, n)
			require.Nil(t, rec)
		}
		_, err := DecodeBytes(tc.buf, tc.layout)
		require.NoError(t, err)
	}
}

func TestDecode_TrailingBytesIgnored(t *testing.T) {
	buf := append(withPlayerHeader(), 0xde, 0xad)
	rec, err := DecodeBytes(buf, types.LAYOUT_WITH_PLAYER)
	require.NoError(t, err)
	require.Equal(t, len(buf)-2, rec.End)
}

func TestDecode_NegativePlayerNameLength(t *testing.T) {
	buf := bytes.NewBuffer(legacyHeader())
	writers.Write_int16_le(buf, -3)
	buf.WriteString("Bob")

	_, err := DecodeBytes(buf.Bytes(), types.LAYOUT_WITH_PLAYER)
	require.ErrorIs(t, err, ErrNegativeLength)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, types.FIELD_PLAYER_NAME, fe.Field)
	require.Equal(t, 25, fe.Offset)
}

func fullRecord(version int32) *types.SaveRecord {
	return &types.SaveRecord{
		Layout:     types.LAYOUT_FULL,
		GameTitle:  "TESV_SAVEGAME",
		HeaderSize: 97,
		Version:    version,
		SaveNumber: 3,
		Player:     &types.PlayerInfo{Name: "Aluna Messana", Level: 1, Location: "Old Hroldan Inn"},
		Details: &types.HeaderDetails{
			GameDate:         "000.11.05",
			RaceEditorID:     "RedguardRace",
			Sex:              types.SEX_FEMALE,
			CurrentXP:        12.5,
			LevelUpXP:        300,
			FileTime:         types.FileTime{Low: 0x8e1b5d00, High: 0x01d5f0a2},
			ScreenshotWidth:  320,
			ScreenshotHeight: 192,
			HasCompression:   types.HasCompression(version),
			CompressionType:  2,
		},
	}
}

func TestDecode_Full(t *testing.T) {
	for _, version := range []int32{9, 12} {
		want := fullRecord(version)
		if !want.Details.HasCompression {
			want.Details.CompressionType = 0
		}
		buf, err := writers.Encoder{}.EncodeRecord(want)
		require.NoError(t, err)
		want.End = len(buf)

		expected_len := 25 + (2 + 13) + 4 + (2 + 15) + (2 + 9) + (2 + 12) + 2 + 4 + 4 + 8 + 4 + 4
		if version >= 12 {
			expected_len += 2
		}
		require.Len(t, buf, expected_len)

		got, err := DecodeBytes(buf, types.LAYOUT_FULL)
		require.NoError(t, err)
		require.Equal(t, want, got)
		require.Equal(t, version >= 12, got.IsSE())
	}
}

func TestDecode_FullTruncatedInFiletime(t *testing.T) {
	rec := fullRecord(12)
	buf, err := writers.Encoder{}.EncodeRecord(rec)
	require.NoError(t, err)

	// Cut 4 bytes into the 8 byte filetime
	cut := len(buf) - 2 - 4 - 4 - 4
	_, err = DecodeBytes(buf[:cut], types.LAYOUT_FULL)

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, types.FIELD_FILETIME, fe.Field)
	require.ErrorIs(t, err, ErrOutOfBounds)

	var oob *OutOfBoundsError
	require.True(t, errors.As(err, &oob))
	require.Equal(t, &OutOfBoundsError{Offset: cut - 4, Want: 8, Have: 4}, oob)
}

func TestDecode_RoundTrip(t *testing.T) {
	for _, rec := range []*types.SaveRecord{
		{Layout: types.LAYOUT_LEGACY, GameTitle: "TESV_SAVEGAME", HeaderSize: 74, Version: 9, SaveNumber: 1},
		{Layout: types.LAYOUT_WITH_PLAYER, GameTitle: "short", HeaderSize: -5, Version: 12, SaveNumber: 1 << 30,
			Player: &types.PlayerInfo{Name: "", Level: -1, Location: "Whiterun"}},
		fullRecord(12),
	} {
		buf, err := writers.Encoder{}.EncodeRecord(rec)
		require.NoError(t, err)

		got, err := DecodeBytes(buf, rec.Layout)
		require.NoError(t, err)

		// Fixed-length titles come back padded
		want := *rec
		want.GameTitle = rec.GameTitle + string(make([]byte, types.GAME_TITLE_LENGTH-len(rec.GameTitle)))
		want.End = len(buf)
		require.Equal(t, &want, got)

		again, err := writers.Encoder{}.EncodeRecord(got)
		require.NoError(t, err)
		require.Equal(t, buf, again)
	}
}

func TestDecode_Tracer(t *testing.T) {
	events := []TraceEvent{}
	_, err := DecodeBytes(withPlayerHeader(), types.LAYOUT_WITH_PLAYER, WithTracer(func(ev TraceEvent) {
		events = append(events, ev)
	}))
	require.NoError(t, err)

	require.Len(t, events, 7)
	require.Equal(t, TraceEvent{Field: types.FIELD_GAME_TITLE, Offset: 0, Size: 13, Value: "TestGameXXXXX"}, events[0])
	require.Equal(t, TraceEvent{Field: types.FIELD_SAVE_NUMBER, Offset: 21, Size: 4, Value: int32(7)}, events[3])
	require.Equal(t, TraceEvent{Field: types.FIELD_PLAYER_NAME, Offset: 25, Size: 6, Value: "Bob0"}, events[4])
	require.Equal(t, TraceEvent{Field: types.FIELD_PLAYER_LOCATION, Offset: 35, Size: 7, Value: "Cave0"}, events[6])
}

func TestDecode_TracerSeesFailure(t *testing.T) {
	var last TraceEvent
	count := 0
	_, err := DecodeBytes(legacyHeader()[:19], types.LAYOUT_LEGACY, WithTracer(func(ev TraceEvent) {
		last = ev
		count++
	}))
	require.Error(t, err)
	require.Equal(t, 3, count)
	require.Equal(t, types.FIELD_VERSION, last.Field)
	require.Equal(t, 17, last.Offset)
	require.ErrorIs(t, last.Err, ErrOutOfBounds)
}

func TestDecode_UnknownLayout(t *testing.T) {
	_, err := DecodeBytes(legacyHeader(), types.LAYOUT_COUNT)
	require.ErrorIs(t, err, ErrUnknownLayout)
}

func TestDecode_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := range 64 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := &types.SaveRecord{
				Layout:     types.LAYOUT_WITH_PLAYER,
				GameTitle:  "TESV_SAVEGAME",
				SaveNumber: int32(i),
				Player:     &types.PlayerInfo{Name: "Dovahkiin", Level: int32(i * 2)},
			}
			buf, err := writers.Encoder{}.EncodeRecord(rec)
			if err != nil {
				errs <- err
				return
			}
			got, err := DecodeBytes(buf, types.LAYOUT_WITH_PLAYER)
			if err != nil {
				errs <- err
				return
			}
			if got.SaveNumber != int32(i) || got.Player.Level != int32(i*2) {
				errs <- errors.New("decoded the wrong record")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestParseLayout(t *testing.T) {
	for name, want := range map[string]types.Layout{
		"legacy":      types.LAYOUT_LEGACY,
		"withPlayer":  types.LAYOUT_WITH_PLAYER,
		"with_player": types.LAYOUT_WITH_PLAYER,
		" FULL ":      types.LAYOUT_FULL,
	} {
		got, err := ParseLayout(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := ParseLayout("fallout4")
	require.ErrorIs(t, err, ErrUnknownLayout)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quicksave.ess"), withPlayerHeader(), 0644))

	rec, err := LoadFile(dir, "quicksave.ess", types.LAYOUT_WITH_PLAYER)
	require.NoError(t, err)
	require.Equal(t, "Bob0", rec.Player.Name)

	// absolute names ignore the root
	rec, err = LoadFile("/nonexistent", filepath.Join(dir, "quicksave.ess"), types.LAYOUT_LEGACY)
	require.NoError(t, err)
	require.Equal(t, int32(7), rec.SaveNumber)

	_, err = LoadFile(dir, "missing.ess", types.LAYOUT_LEGACY)
	var ioe *IOError
	require.True(t, errors.As(err, &ioe))
	require.Equal(t, filepath.Join(dir, "missing.ess"), ioe.Path)
	require.ErrorIs(t, err, os.ErrNotExist)
}
