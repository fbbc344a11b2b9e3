package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"essdump/readers"
	"essdump/types"
)

func TestLines_Legacy(t *testing.T) {
	rec := &types.SaveRecord{Layout: types.LAYOUT_LEGACY, GameTitle: "TestGameXXXXX", HeaderSize: 100, Version: 2, SaveNumber: 7, End: 25}
	require.Equal(t, []string{
		"Layout: legacy (25 bytes)",
		`   Game Title: "TestGameXXXXX"`,
		"   Header Size: 100",
		"   Version: 2 (Skyrim)",
		"   Save Number: 7",
	}, Lines(rec))
}

func TestLines_Full(t *testing.T) {
	rec := &types.SaveRecord{
		Layout:    types.LAYOUT_FULL,
		GameTitle: "TESV_SAVEGAME",
		Version:   12,
		Player:    &types.PlayerInfo{Name: "Aluna", Level: 3, Location: "Riverwood"},
		Details: &types.HeaderDetails{
			RaceEditorID:    "RedguardRace",
			Sex:             types.SEX_FEMALE,
			HasCompression:  true,
			CompressionType: 2,
		},
	}
	lines := Lines(rec)
	require.Contains(t, lines, "   Version: 12 (Skyrim Special Edition)")
	require.Contains(t, lines, "   Character Name: Aluna")
	require.Contains(t, lines, "   Character Race: Redguard")
	require.Contains(t, lines, "   Character Sex: Female")
	require.Contains(t, lines, "   Saved At: unknown")
	require.Contains(t, lines, "   Compression: LZ4 (block)")
}

func TestTrace(t *testing.T) {
	lines := Trace([]readers.TraceEvent{
		{Field: types.FIELD_GAME_TITLE, Offset: 0, Size: 13, Value: "TestGameXXXXX"},
		{Field: types.FIELD_HEADER_SIZE, Offset: 13, Size: 4, Value: int32(100)},
		{Field: types.FIELD_VERSION, Offset: 17, Size: 0, Err: errors.New("boom")},
	})
	require.Equal(t, []string{
		`0-12: gameTitle = "TestGameXXXXX"`,
		"13-16: headerSize = 100",
		"17-17: version FAILED: boom",
	}, lines)
}

func TestSummary(t *testing.T) {
	rec := &types.SaveRecord{SaveNumber: 4, Player: &types.PlayerInfo{Name: "Bob", Level: 2, Location: "Cave"}}
	require.Equal(t, "save #4: Bob (level 2) in Cave", Summary(rec))
	require.Equal(t, "save #4", Summary(&types.SaveRecord{SaveNumber: 4}))
}

func TestPlugins(t *testing.T) {
	lines := Plugins(&types.PluginInfo{FormVersion: 78, Plugins: []string{"Skyrim.esm", "Update.esm"}})
	require.Equal(t, []string{
		"Plugins: 2 (form version 78)",
		"     0 Skyrim.esm",
		"     1 Update.esm",
	}, lines)
}
