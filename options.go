package asciify

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

// Mode selects how a cell is painted.
type Mode int

const (
	// ModeColor tints each glyph with the sampled pixel color.
	ModeColor Mode = iota
	// ModeGrayscale draws glyphs in their neutral color.
	ModeGrayscale
	// ModeBlock ignores glyphs and fills each cell with the sampled color.
	ModeBlock
)

var modeNames = [...]string{"color", "grayscale", "block"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode maps a mode name to a Mode. "colorize" and "gray" are accepted
// as aliases.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "color", "colour", "colorize":
		return ModeColor, true
	case "grayscale", "greyscale", "gray", "grey":
		return ModeGrayscale, true
	case "block", "blocks":
		return ModeBlock, true
	}
	return ModeColor, false
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	parsed, ok := ParseMode(string(text))
	if !ok {
		return fmt.Errorf("unknown mode %q", text)
	}
	*m = parsed
	return nil
}

// Limits applied by Normalize. Out-of-range values are clamped, never
// rejected.
const (
	MinFontSize         = 1.0
	MaxFontSize         = 100.0
	MaxSpacingRatio     = 4.0
	MinPixelRatio       = 1.0
	MaxPixelRatio       = 8.0
	MaxContrastRatio    = 255
	DefaultFontSize     = 12.0
	DefaultFontFamily   = "Go Mono"
	DefaultBackground   = "#000000"
	DefaultCharacterSet = " .:-=+*#%@"
)

// Options configures an Asciify rasterizer. The zero value is not ready
// for use; start from DefaultOptions or run Normalize.
type Options struct {
	// CharacterSet is ordered from darkest to brightest. The first entry
	// is conventionally blank.
	CharacterSet          []string `yaml:"characterSet"`
	FontFamily            string   `yaml:"fontFamily"`
	FontSize              float64  `yaml:"fontSize"`
	CharacterSpacingRatio float64  `yaml:"characterSpacingRatio"`
	Mode                  Mode     `yaml:"mode"`
	BackgroundColor       string   `yaml:"backgroundColor"`
	PixelRatio            float64  `yaml:"pixelRatio"`
	ContrastRatio         int      `yaml:"contrastRatio"`
	FlipY                 bool     `yaml:"flipY"`
	Debug                 bool     `yaml:"debug"`
}

// Option is a functional option applied on top of DefaultOptions.
type Option func(*Options)

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		CharacterSet:    SplitCharacters(DefaultCharacterSet),
		FontFamily:      DefaultFontFamily,
		FontSize:        DefaultFontSize,
		Mode:            ModeColor,
		BackgroundColor: DefaultBackground,
		PixelRatio:      1,
	}
}

// NewOptions builds normalized options from the defaults and opts.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o.Normalize()
}

// WithCharacterSet sets the character set from a string, split into
// display characters.
func WithCharacterSet(chars string) Option {
	return func(o *Options) {
		o.CharacterSet = SplitCharacters(chars)
	}
}

// WithPreset selects a named character set. Unknown names are ignored.
func WithPreset(name string) Option {
	return func(o *Options) {
		if set, ok := Preset(name); ok {
			o.CharacterSet = set
		}
	}
}

func WithFontFamily(family string) Option {
	return func(o *Options) { o.FontFamily = family }
}

func WithFontSize(size float64) Option {
	return func(o *Options) { o.FontSize = size }
}

func WithSpacingRatio(ratio float64) Option {
	return func(o *Options) { o.CharacterSpacingRatio = ratio }
}

func WithMode(m Mode) Option {
	return func(o *Options) { o.Mode = m }
}

func WithBackgroundColor(c string) Option {
	return func(o *Options) { o.BackgroundColor = c }
}

func WithPixelRatio(ratio float64) Option {
	return func(o *Options) { o.PixelRatio = ratio }
}

func WithContrastRatio(ratio int) Option {
	return func(o *Options) { o.ContrastRatio = ratio }
}

func WithFlipY(flip bool) Option {
	return func(o *Options) { o.FlipY = flip }
}

func WithDebug(debug bool) Option {
	return func(o *Options) { o.Debug = debug }
}

// Normalize returns a copy of o with numeric fields clamped and missing
// fields defaulted. The receiver is not modified.
func (o Options) Normalize() Options {
	n := o
	n.CharacterSet = append([]string(nil), o.CharacterSet...)
	if len(n.CharacterSet) == 0 {
		n.CharacterSet = SplitCharacters(DefaultCharacterSet)
	}
	if strings.TrimSpace(n.FontFamily) == "" {
		n.FontFamily = DefaultFontFamily
	}
	if math.IsNaN(n.FontSize) || n.FontSize == 0 {
		n.FontSize = DefaultFontSize
	}
	n.FontSize = clampFloat(n.FontSize, MinFontSize, MaxFontSize)
	if math.IsNaN(n.CharacterSpacingRatio) {
		n.CharacterSpacingRatio = 0
	}
	n.CharacterSpacingRatio = clampFloat(n.CharacterSpacingRatio, 0, MaxSpacingRatio)
	if math.IsNaN(n.PixelRatio) {
		n.PixelRatio = MinPixelRatio
	}
	n.PixelRatio = clampFloat(n.PixelRatio, MinPixelRatio, MaxPixelRatio)
	n.ContrastRatio = clampInt(n.ContrastRatio, 0, MaxContrastRatio)
	if n.Mode < ModeColor || n.Mode > ModeBlock {
		n.Mode = ModeColor
	}
	if _, ok := ParseColor(n.BackgroundColor); !ok {
		n.BackgroundColor = DefaultBackground
	}
	return n
}

// Background returns the parsed background color, black if unparseable.
func (o Options) Background() color.NRGBA {
	c, _ := ParseColor(o.BackgroundColor)
	return c
}

// GlyphSize is the rendered font size in device pixels.
func (o Options) GlyphSize() int {
	return max(1, int(math.Round(o.FontSize*o.PixelRatio)))
}

// CellSize is the side of one grid cell in device pixels. Glyph textures
// are rendered at exactly this size.
func (o Options) CellSize() int {
	return max(1, int(math.Round(float64(o.GlyphSize())*(1+o.CharacterSpacingRatio))))
}

// OptionsFromMap builds normalized options from loosely typed values, as
// produced by a YAML or JSON decoder. Numbers may be given as strings.
// Unknown keys are ignored; unusable values keep their defaults.
func OptionsFromMap(m map[string]any) Options {
	o := DefaultOptions()
	if v, ok := m["preset"]; ok {
		if set, ok := Preset(fmt.Sprint(v)); ok {
			o.CharacterSet = set
		}
	}
	if v, ok := m["characterSet"]; ok {
		switch cs := v.(type) {
		case string:
			o.CharacterSet = SplitCharacters(cs)
		case []string:
			o.CharacterSet = append([]string(nil), cs...)
		case []any:
			set := make([]string, 0, len(cs))
			for _, c := range cs {
				set = append(set, fmt.Sprint(c))
			}
			o.CharacterSet = set
		}
	}
	if v, ok := m["fontFamily"].(string); ok {
		o.FontFamily = v
	}
	if f, ok := toFloat(m["fontSize"]); ok {
		o.FontSize = f
	}
	if f, ok := toFloat(m["characterSpacingRatio"]); ok {
		o.CharacterSpacingRatio = f
	}
	if f, ok := toFloat(m["pixelRatio"]); ok {
		o.PixelRatio = f
	}
	if f, ok := toFloat(m["contrastRatio"]); ok {
		o.ContrastRatio = int(clampFloat(f, 0, MaxContrastRatio))
	}
	if v, ok := m["mode"]; ok {
		if mode, ok := ParseMode(fmt.Sprint(v)); ok {
			o.Mode = mode
		}
	}
	// colorize is the older boolean form of mode.
	if b, ok := toBool(m["colorize"]); ok && m["mode"] == nil {
		if b {
			o.Mode = ModeColor
		} else {
			o.Mode = ModeGrayscale
		}
	}
	if v, ok := m["backgroundColor"].(string); ok {
		o.BackgroundColor = v
	}
	if b, ok := toBool(m["flipY"]); ok {
		o.FlipY = b
	}
	if b, ok := toBool(m["debug"]); ok {
		o.Debug = b
	}
	return o.Normalize()
}

// LoadOptions reads a YAML option file. See OptionsFromMap for the
// accepted keys.
func LoadOptions(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read options: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Options{}, fmt.Errorf("failed to parse options %s: %w", path, err)
	}
	return OptionsFromMap(m), nil
}

// MarshalYAML writes the effective options, with the character set
// joined back into a single string.
func (o Options) MarshalYAML() (any, error) {
	return map[string]any{
		"characterSet":          strings.Join(o.CharacterSet, ""),
		"fontFamily":            o.FontFamily,
		"fontSize":              o.FontSize,
		"characterSpacingRatio": o.CharacterSpacingRatio,
		"mode":                  o.Mode.String(),
		"backgroundColor":       o.BackgroundColor,
		"pixelRatio":            o.PixelRatio,
		"contrastRatio":         o.ContrastRatio,
		"flipY":                 o.FlipY,
		"debug":                 o.Debug,
	}, nil
}

// ParseColor parses "#RGB", "#RGBA", "#RRGGBB", "#RRGGBBAA" (leading '#'
// optional) or a CSS color name. The second result reports success; on
// failure opaque black is returned.
func ParseColor(s string) (color.NRGBA, bool) {
	black := color.NRGBA{A: 255}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return black, false
	}
	if s == "transparent" {
		return color.NRGBA{}, true
	}
	if c, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, true
	}
	hex := strings.TrimPrefix(s, "#")
	var v [8]uint8
	for i := 0; i < len(hex); i++ {
		if i >= len(v) {
			return black, false
		}
		d, ok := hexDigit(hex[i])
		if !ok {
			return black, false
		}
		v[i] = d
	}
	switch len(hex) {
	case 3:
		return color.NRGBA{R: v[0] * 17, G: v[1] * 17, B: v[2] * 17, A: 255}, true
	case 4:
		return color.NRGBA{R: v[0] * 17, G: v[1] * 17, B: v[2] * 17, A: v[3] * 17}, true
	case 6:
		return color.NRGBA{R: v[0]<<4 | v[1], G: v[2]<<4 | v[3], B: v[4]<<4 | v[5], A: 255}, true
	case 8:
		return color.NRGBA{R: v[0]<<4 | v[1], G: v[2]<<4 | v[3], B: v[4]<<4 | v[5], A: v[6]<<4 | v[7]}, true
	}
	return black, false
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	case int:
		return b != 0, true
	}
	return false, false
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
