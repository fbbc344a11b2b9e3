package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var ErrUnknownCharset = errors.New("unknown charset")

// Safe_lookup returns from[with], or a placeholder naming the unknown key.
func Safe_lookup[K comparable](from map[K]string, with K) string {
	out, ok := from[with]
	if !ok {
		out = fmt.Sprintf("Unknown (%v)", with)
	}
	return out
}

// Charset maps a charset name from the config file to an encoding.
func Charset(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "utf-8", "utf8":
		return unicode.UTF8, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
}

// Split_list splits a comma separated config value, dropping blanks.
func Split_list(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Has_extension reports whether name ends in one of exts, ignoring case.
// Save files on Windows tend to come in whatever case the game felt like.
func Has_extension(name string, exts []string) bool {
	upper := strings.ToUpper(name)
	for _, ext := range exts {
		if strings.HasSuffix(upper, strings.ToUpper(ext)) {
			return true
		}
	}
	return false
}

// List_files returns the paths of the files in dir with one of exts, sorted by name.
func List_files(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, entry := range entries {
		if entry.IsDir() || !Has_extension(entry.Name(), exts) {
			continue
		}
		out = append(out, filepath.Join(dir, entry.Name()))
	}
	return out, nil
}
