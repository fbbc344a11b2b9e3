package config

// Settings come from (in increasing priority): defaults, essdump.ini, command line flags.

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/text/encoding"
	"gopkg.in/ini.v1"

	"essdump/readers"
	"essdump/types"
	"essdump/utils"
)

const DEFAULT_FILE = "essdump.ini"

type Config struct {
	// Where save files (and the watcher index) live
	Dir        string
	Layout     types.Layout
	Charset    string
	Encoding   encoding.Encoding
	Extensions []string
	// How long the watcher waits after a write before reading the file
	Settle  time.Duration
	Verbose bool

	// The ini file the settings came from, "" if there wasn't one
	Source string
}

func Default() Config {
	wd, _ := os.Getwd()
	charset, _ := utils.Charset("")
	return Config{
		Dir:        wd,
		Layout:     types.LAYOUT_WITH_PLAYER,
		Charset:    "windows-1252",
		Encoding:   charset,
		Extensions: []string{".ess"},
		Settle:     2 * time.Second,
	}
}

// Load reads the ini file at path on top of the defaults.
// A missing file is not an error, it just leaves the defaults alone.
func Load(path string) (Config, error) {
	cfg := Default()

	file, err := ini.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("loading %v: %w", path, err)
	}
	cfg.Source = path

	// Everything lives in the default section
	section := file.Section("")

	if dir := section.Key("dir").String(); dir != "" {
		cfg.Dir = dir
	}
	if section.HasKey("layout") {
		if err := cfg.SetLayout(section.Key("layout").String()); err != nil {
			return cfg, fmt.Errorf("%v: %w", path, err)
		}
	}
	if section.HasKey("charset") {
		if err := cfg.SetCharset(section.Key("charset").String()); err != nil {
			return cfg, fmt.Errorf("%v: %w", path, err)
		}
	}
	if section.HasKey("extensions") {
		exts := utils.Split_list(section.Key("extensions").String())
		if len(exts) > 0 {
			cfg.Extensions = exts
		}
	}
	if section.HasKey("settle") {
		settle, err := section.Key("settle").Duration()
		if err != nil || settle < 0 {
			return cfg, fmt.Errorf("%v: bad settle value %q", path, section.Key("settle").String())
		}
		cfg.Settle = settle
	}
	if section.HasKey("verbose") {
		verbose, err := section.Key("verbose").Bool()
		if err != nil {
			return cfg, fmt.Errorf("%v: bad verbose value: %w", path, err)
		}
		cfg.Verbose = verbose
	}

	return cfg, nil
}

func (c *Config) SetLayout(name string) error {
	layout, err := readers.ParseLayout(name)
	if err != nil {
		return err
	}
	c.Layout = layout
	return nil
}

func (c *Config) SetCharset(name string) error {
	enc, err := utils.Charset(name)
	if err != nil {
		return err
	}
	c.Charset = name
	c.Encoding = enc
	return nil
}

// DecodeOptions returns the decoder options implied by the config.
func (c *Config) DecodeOptions() []readers.DecodeOption {
	return []readers.DecodeOption{readers.WithTextCharset(c.Encoding)}
}

// Lines describes the effective settings, for "essdump check".
func (c *Config) Lines() []string {
	source := c.Source
	if source == "" {
		source = "(defaults)"
	}
	return []string{
		"Config file: " + source,
		"Target dir is: " + c.Dir,
		"Layout: " + c.Layout.String(),
		"Charset: " + c.Charset,
		fmt.Sprintf("Extensions: %v", c.Extensions),
		"Settle delay: " + c.Settle.String(),
		fmt.Sprintf("Verbose: %v", c.Verbose),
	}
}
