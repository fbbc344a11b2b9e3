package tables

// These tables are in their own file because they may grow large.

import "essdump/types"

// Races maps playable race editor IDs to display names.
// Vampire variants are separate races in the save; they're folded into the base name.
var Races = map[string]string{
	"ArgonianRace": "Argonian",
	"BretonRace":   "Breton",
	"DarkElfRace":  "Dark Elf",
	"HighElfRace":  "High Elf",
	"ImperialRace": "Imperial",
	"KhajiitRace":  "Khajiit",
	"NordRace":     "Nord",
	"OrcRace":      "Orc",
	"RedguardRace": "Redguard",
	"WoodElfRace":  "Wood Elf",

	"ArgonianRaceVampire": "Argonian (Vampire)",
	"BretonRaceVampire":   "Breton (Vampire)",
	"DarkElfRaceVampire":  "Dark Elf (Vampire)",
	"HighElfRaceVampire":  "High Elf (Vampire)",
	"ImperialRaceVampire": "Imperial (Vampire)",
	"KhajiitRaceVampire":  "Khajiit (Vampire)",
	"NordRaceVampire":     "Nord (Vampire)",
	"OrcRaceVampire":      "Orc (Vampire)",
	"RedguardRaceVampire": "Redguard (Vampire)",
	"WoodElfRaceVampire":  "Wood Elf (Vampire)",
}

var Compressions = map[uint16]string{
	types.COMPRESSION_NONE: "None",
	types.COMPRESSION_ZLIB: "zLib",
	types.COMPRESSION_LZ4:  "LZ4 (block)",
}

// Editions names the game that wrote a save, keyed by whether it is an SE save.
var Editions = map[bool]string{
	false: "Skyrim",
	true:  "Skyrim Special Edition",
}

// Field labels as shown in reports.
var FieldLabels = map[types.Field]string{
	types.FIELD_GAME_TITLE:        "Game Title",
	types.FIELD_HEADER_SIZE:       "Header Size",
	types.FIELD_VERSION:           "Version",
	types.FIELD_SAVE_NUMBER:       "Save Number",
	types.FIELD_PLAYER_NAME:       "Character Name",
	types.FIELD_PLAYER_LEVEL:      "Character Level",
	types.FIELD_PLAYER_LOCATION:   "Current Location",
	types.FIELD_GAME_DATE:         "In-game Date",
	types.FIELD_RACE:              "Character Race",
	types.FIELD_SEX:               "Character Sex",
	types.FIELD_CURRENT_XP:        "Current XP",
	types.FIELD_LEVEL_UP_XP:       "Level-up XP",
	types.FIELD_FILETIME:          "Saved At",
	types.FIELD_SCREENSHOT_WIDTH:  "Screenshot Width",
	types.FIELD_SCREENSHOT_HEIGHT: "Screenshot Height",
	types.FIELD_COMPRESSION:       "Compression",
	types.FIELD_FORM_VERSION:      "Form Version",
	types.FIELD_PLUGINS:           "Plugins",
}
