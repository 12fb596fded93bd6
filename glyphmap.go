package asciify

// LuminanceLevels is the number of luminance buckets.
const LuminanceLevels = 256

// GlyphTable maps each luminance bucket to a display character. It is
// built once per configuration and never mutated afterwards.
type GlyphTable struct {
	chars    [LuminanceLevels]string
	index    [LuminanceLevels]int
	blank    [LuminanceLevels]bool
	contrast int
	size     int
}

// BuildGlyphTable builds the bucket table for a character set ordered
// from darkest to brightest. contrast blank entries are virtually
// prepended before bucketing, widening the luminance range that draws
// nothing. An empty set falls back to DefaultCharacterSet.
func BuildGlyphTable(set []string, contrast int) *GlyphTable {
	if len(set) == 0 {
		set = SplitCharacters(DefaultCharacterSet)
	}
	contrast = clampInt(contrast, 0, MaxContrastRatio)

	t := &GlyphTable{contrast: contrast, size: len(set) + contrast}
	for l := 0; l < LuminanceLevels; l++ {
		i := l * t.size / LuminanceLevels
		t.index[l] = i
		if i < contrast {
			t.blank[l] = true
			continue
		}
		c := set[i-contrast]
		t.chars[l] = c
		t.blank[l] = isBlank(c)
	}
	return t
}

// Character returns the character for a luminance bucket. Blank buckets
// return the empty string.
func (t *GlyphTable) Character(luminance uint8) string {
	if t.blank[luminance] {
		return ""
	}
	return t.chars[luminance]
}

// IsBlank reports whether the bucket draws nothing.
func (t *GlyphTable) IsBlank(luminance uint8) bool {
	return t.blank[luminance]
}

// Index returns the position of the bucket's entry in the contrast-padded
// character set. Indices never decrease as luminance increases.
func (t *GlyphTable) Index(luminance uint8) int {
	return t.index[luminance]
}

// Len is the length of the contrast-padded character set.
func (t *GlyphTable) Len() int {
	return t.size
}

// Luminance approximates perceived brightness with NTSC weights in
// fixed-point integer math. The result is in [0, 249].
func Luminance(r, g, b uint8) uint8 {
	return uint8((uint32(r)*299 + uint32(g)*587 + uint32(b)*114) >> 10)
}
