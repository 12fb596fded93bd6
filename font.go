package asciify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"
)

// builtinFonts are embedded fonts addressable by family name.
var builtinFonts = map[string][]byte{
	"go mono":      gomono.TTF,
	"gomono":       gomono.TTF,
	"monospace":    gomono.TTF,
	"go mono bold": gomonobold.TTF,
	"go":           goregular.TTF,
	"go regular":   goregular.TTF,
	"sans-serif":   goregular.TTF,
}

var fontCache = struct {
	sync.RWMutex
	fonts map[string]*truetype.Font
}{fonts: make(map[string]*truetype.Font)}

// LoadFont resolves a font family to a parsed font. The family is either
// a built-in name ("Go Mono", "Go", "monospace") or a path to a TrueType
// file. Parsed fonts are cached and shared; truetype.Font is read-only.
func LoadFont(family string) (*truetype.Font, error) {
	key := strings.ToLower(strings.TrimSpace(family))
	fontCache.RLock()
	f, ok := fontCache.fonts[key]
	fontCache.RUnlock()
	if ok {
		return f, nil
	}

	data, ok := builtinFonts[key]
	if !ok {
		ext := strings.ToLower(filepath.Ext(family))
		if ext != ".ttf" && ext != ".otf" {
			return nil, fmt.Errorf("unknown font family %q", family)
		}
		var err error
		data, err = os.ReadFile(family)
		if err != nil {
			return nil, fmt.Errorf("failed to read font: %w", err)
		}
	}

	f, err := freetype.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %q: %w", family, err)
	}

	fontCache.Lock()
	fontCache.fonts[key] = f
	fontCache.Unlock()
	return f, nil
}

// loadFontOrDefault never fails: unusable families fall back to Go Mono.
func loadFontOrDefault(family string) *truetype.Font {
	f, err := LoadFont(family)
	if err == nil {
		return f
	}
	Logger().Warn("asciify: falling back to default font",
		"family", family, "error", err)
	f, err = LoadFont(DefaultFontFamily)
	if err != nil {
		// gomono is embedded; failing to parse it is a build defect.
		panic(err)
	}
	return f
}
