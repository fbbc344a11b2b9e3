package report

import (
	"fmt"
	"strings"
	"time"

	"essdump/readers"
	"essdump/tables"
	"essdump/types"
	"essdump/utils"
)

func label(f types.Field) string {
	return utils.Safe_lookup(tables.FieldLabels, f)
}

func line(f types.Field, value any) string {
	return fmt.Sprintf("   %v: %v", label(f), value)
}

// Lines renders a decoded record for the console, one field per line.
func Lines(rec *types.SaveRecord) []string {
	out := []string{}

	out = append(out, fmt.Sprintf("Layout: %v (%v bytes)", rec.Layout, rec.End))
	// The title is a fixed-length slot, so it may carry padding.
	out = append(out, line(types.FIELD_GAME_TITLE, fmt.Sprintf("%q", rec.GameTitle)))
	out = append(out, line(types.FIELD_HEADER_SIZE, rec.HeaderSize))
	out = append(out, line(types.FIELD_VERSION, fmt.Sprintf("%v (%v)", rec.Version, tables.Editions[rec.IsSE()])))
	out = append(out, line(types.FIELD_SAVE_NUMBER, rec.SaveNumber))

	if rec.Player != nil {
		out = append(out, "")
		out = append(out, line(types.FIELD_PLAYER_NAME, rec.Player.Name))
		out = append(out, line(types.FIELD_PLAYER_LEVEL, rec.Player.Level))
		out = append(out, line(types.FIELD_PLAYER_LOCATION, rec.Player.Location))
	}

	if d := rec.Details; d != nil {
		out = append(out, line(types.FIELD_GAME_DATE, d.GameDate))
		race, ok := tables.Races[d.RaceEditorID]
		if !ok {
			race = d.RaceEditorID
		}
		out = append(out, line(types.FIELD_RACE, race))
		out = append(out, line(types.FIELD_SEX, d.Sex))
		out = append(out, line(types.FIELD_CURRENT_XP, fmt.Sprintf("%v / %v", d.CurrentXP, d.LevelUpXP)))
		saved := "unknown"
		if t := d.FileTime.Time(); !t.IsZero() {
			saved = t.Format(time.RFC3339)
		}
		out = append(out, line(types.FIELD_FILETIME, saved))
		out = append(out, fmt.Sprintf("   Screenshot: %vx%v", d.ScreenshotWidth, d.ScreenshotHeight))
		if d.HasCompression {
			out = append(out, line(types.FIELD_COMPRESSION, utils.Safe_lookup(tables.Compressions, d.CompressionType)))
		}
	}

	return out
}

// Trace renders decoder trace events, one per field, in the form
// "start-end: field = value". A failed field gets its error instead of a value.
func Trace(events []readers.TraceEvent) []string {
	out := []string{}
	for _, ev := range events {
		end := ev.Offset + ev.Size - 1
		if ev.Size == 0 {
			end = ev.Offset
		}
		prefix := fmt.Sprintf("%v-%v: %v", ev.Offset, end, ev.Field)
		if ev.Err != nil {
			out = append(out, fmt.Sprintf("%v FAILED: %v", prefix, ev.Err))
			continue
		}
		value := ev.Value
		if s, ok := value.(string); ok {
			value = fmt.Sprintf("%q", s)
		}
		out = append(out, fmt.Sprintf("%v = %v", prefix, value))
	}
	return out
}

// Plugins renders a plugin list, numbered in load order.
func Plugins(info *types.PluginInfo) []string {
	out := []string{fmt.Sprintf("%v: %v (form version %v)", label(types.FIELD_PLUGINS), len(info.Plugins), info.FormVersion)}
	for i, name := range info.Plugins {
		out = append(out, fmt.Sprintf("   %3d %v", i, name))
	}
	return out
}

// Summary is a one-line description, used by the watcher.
func Summary(rec *types.SaveRecord) string {
	parts := []string{fmt.Sprintf("save #%v", rec.SaveNumber)}
	if rec.Player != nil {
		parts = append(parts, fmt.Sprintf("%v (level %v) in %v", rec.Player.Name, rec.Player.Level, rec.Player.Location))
	}
	return strings.Join(parts, ": ")
}
