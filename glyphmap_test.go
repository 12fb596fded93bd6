package asciify

import "testing"

func TestLuminance(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    uint8
	}{
		{"black", 0, 0, 0, 0},
		{"white", 255, 255, 255, 249},
		{"red", 255, 0, 0, 74},
		{"green", 0, 255, 0, 146},
		{"blue", 0, 0, 255, 28},
	}
	for _, tt := range tests {
		if got := Luminance(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("%s: Luminance = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestGlyphTableDefaultSet(t *testing.T) {
	table := BuildGlyphTable(SplitCharacters(DefaultCharacterSet), 0)

	if table.Len() != 10 {
		t.Fatalf("Expected 10 entries, got %d", table.Len())
	}
	if !table.IsBlank(0) || table.Character(0) != "" {
		t.Errorf("Bucket 0 should be blank, got %q", table.Character(0))
	}
	if got := table.Character(255); got != "@" {
		t.Errorf("Bucket 255 should be '@', got %q", got)
	}
	// 74 * 10 / 256 = 2
	if got := table.Character(74); got != ":" {
		t.Errorf("Bucket 74 should be ':', got %q", got)
	}
}

func TestGlyphTableMonotonic(t *testing.T) {
	for _, name := range PresetNames() {
		set, _ := Preset(name)
		for contrast := 0; contrast <= 10; contrast++ {
			table := BuildGlyphTable(set, contrast)
			prev := -1
			for l := 0; l < LuminanceLevels; l++ {
				idx := table.Index(uint8(l))
				if idx < prev {
					t.Fatalf("%s/contrast %d: index decreased at bucket %d (%d < %d)",
						name, contrast, l, idx, prev)
				}
				prev = idx
			}
			if prev != table.Len()-1 {
				t.Errorf("%s/contrast %d: bucket 255 should map to the last entry, got %d of %d",
					name, contrast, prev, table.Len())
			}
		}
	}
}

func TestGlyphTableContrastWidensBlank(t *testing.T) {
	set := SplitCharacters(DefaultCharacterSet)
	countBlank := func(contrast int) int {
		table := BuildGlyphTable(set, contrast)
		n := 0
		for l := 0; l < LuminanceLevels; l++ {
			if table.IsBlank(uint8(l)) {
				n++
			}
		}
		return n
	}

	if got := countBlank(0); got != 26 {
		t.Errorf("contrast 0: expected 26 blank buckets, got %d", got)
	}
	if got := countBlank(5); got != 103 {
		t.Errorf("contrast 5: expected 103 blank buckets, got %d", got)
	}
	prev := countBlank(0)
	for c := 1; c <= 20; c++ {
		n := countBlank(c)
		if n < prev {
			t.Errorf("contrast %d: blank buckets decreased (%d < %d)", c, n, prev)
		}
		prev = n
	}
}

func TestGlyphTableEmptySetFallsBack(t *testing.T) {
	table := BuildGlyphTable(nil, 0)
	if got := table.Character(255); got != "@" {
		t.Errorf("Empty set should fall back to the default, got %q", got)
	}
}

func TestGlyphTableNonPrintableIsBlank(t *testing.T) {
	table := BuildGlyphTable([]string{"a", "\t", "\x00", "b"}, 0)

	tests := []struct {
		bucket uint8
		want   string
	}{
		{10, "a"},
		{100, ""}, // tab
		{150, ""}, // NUL
		{200, "b"},
	}
	for _, tt := range tests {
		if got := table.Character(tt.bucket); got != tt.want {
			t.Errorf("bucket %d: got %q, want %q", tt.bucket, got, tt.want)
		}
	}
}

func TestGlyphTableContrastClamped(t *testing.T) {
	set := SplitCharacters("ab")
	table := BuildGlyphTable(set, 10000)
	if table.Len() != 2+MaxContrastRatio {
		t.Errorf("Expected contrast clamped to %d, got length %d", MaxContrastRatio, table.Len())
	}
	// 257 entries over 256 buckets: only the first real entry is reached.
	if got := table.Character(255); got != "a" {
		t.Errorf("Bucket 255 should be 'a', got %q", got)
	}
	if !table.IsBlank(254) {
		t.Error("Bucket 254 should be blank")
	}
}
