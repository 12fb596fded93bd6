package asciify

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// presets are character sets ordered from darkest to brightest.
var presets = map[string]string{
	"classic":  DefaultCharacterSet,
	"detailed": " .'`^\",:;Il!i><~+_-?][}{1)(|\\/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8%B@$",
	"blocks":   " ░▒▓█",
	"dots":     " ·•●",
	"binary":   " 01",
}

// Preset returns the named character set, split into display characters.
func Preset(name string) ([]string, bool) {
	chars, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	return SplitCharacters(chars), true
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SplitCharacters splits s into display characters. Combining marks stay
// attached to their base character, so "é" is a single entry.
func SplitCharacters(s string) []string {
	var it norm.Iter
	it.InitString(norm.NFC, s)
	chars := make([]string, 0, len(s))
	for !it.Done() {
		chars = append(chars, string(it.Next()))
	}
	return chars
}

// isBlank reports whether a display character draws nothing: empty,
// whitespace, control or otherwise non-printable.
func isBlank(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) && unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
