// Command asciify renders images, video frames or the built-in spiral as
// ASCII art and writes the result as PNG.
package main

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/wbrown/asciify"
	"github.com/wbrown/asciify/imageutil"
	"github.com/wbrown/asciify/internal/plasma"
	"github.com/wbrown/asciify/videosource"
	"gopkg.in/yaml.v3"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type config struct {
	input      string
	output     string
	configPath string
	video      string
	camera     int
	spiral     bool
	scroll     float64
	text       bool
	ansi       bool
	frames     int
	fps        float64
	width      int
	height     int
	debug      bool
	dumpConfig bool
	presets    bool
	widthSet   bool
	version    bool
	help       bool

	// Overrides applied on top of the config file.
	preset     string
	chars      string
	font       string
	fontSize   float64
	spacing    float64
	mode       string
	background string
	pixelRatio float64
	contrast   int
	flipY      bool
}

func run(args []string, stdout, stderr io.Writer) int {
	var c config
	fs := pflag.NewFlagSet("asciify", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&c.input, "input", "i", "", "Path to the input image")
	fs.StringVarP(&c.output, "output", "o", "ascii.png", "Path of the PNG to write (frames get a -NNNN suffix)")
	fs.StringVarP(&c.configPath, "config", "c", "", "YAML option file")
	fs.StringVar(&c.video, "video", "", "Render frames from a video file instead of an image")
	fs.IntVar(&c.camera, "camera", -1, "Render frames from the capture device with this index")
	fs.BoolVar(&c.spiral, "spiral", false, "Render frames of the animated spiral")
	fs.Float64Var(&c.scroll, "scroll", 0, "Unwind the --spiral (0 tight, up to 14)")
	fs.BoolVar(&c.text, "text", false, "Print the image as plain text to stdout instead of writing a PNG")
	fs.BoolVar(&c.ansi, "ansi", false, "Print the image as 24-bit ANSI colored text to stdout")
	fs.IntVarP(&c.frames, "frames", "n", 1, "Number of frames to render from --video or --spiral")
	fs.Float64Var(&c.fps, "fps", 30, "Frame rate of the --spiral clock")
	fs.IntVarP(&c.width, "width", "w", 1280, "Output width in logical pixels (characters with --text/--ansi, default 80)")
	fs.IntVar(&c.height, "height", 0, "Output height in logical pixels (0 keeps the source aspect ratio)")
	fs.BoolVar(&c.debug, "debug", false, "Log frame statistics to stderr")
	fs.BoolVar(&c.dumpConfig, "dump-config", false, "Print the effective options as YAML and exit")
	fs.BoolVar(&c.presets, "list-presets", false, "List the character set presets and exit")
	fs.BoolVarP(&c.version, "version", "v", false, "Show version information")
	fs.BoolVarP(&c.help, "help", "h", false, "Show help message")

	fs.StringVarP(&c.preset, "preset", "p", "", "Character set preset ("+strings.Join(asciify.PresetNames(), ", ")+")")
	fs.StringVar(&c.chars, "chars", "", "Character set, darkest first")
	fs.StringVarP(&c.font, "font", "f", asciify.DefaultFontFamily, "Font family or path to a TTF/OTF file")
	fs.Float64VarP(&c.fontSize, "font-size", "s", asciify.DefaultFontSize, "Font size in logical pixels")
	fs.Float64Var(&c.spacing, "spacing", 0, "Extra space around each glyph as a fraction of its size")
	fs.StringVarP(&c.mode, "mode", "m", "color", "Color mode: color, grayscale or block")
	fs.StringVarP(&c.background, "background", "b", asciify.DefaultBackground, "Background color")
	fs.Float64Var(&c.pixelRatio, "pixel-ratio", 1, "Device pixels per logical pixel")
	fs.IntVar(&c.contrast, "contrast", 0, "Number of dark character slots drawn blank")
	fs.BoolVar(&c.flipY, "flip-y", false, "Mirror the output vertically")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	c.widthSet = fs.Changed("width")

	if c.help {
		fs.SetOutput(stdout)
		fmt.Fprintln(stdout, "Usage: asciify [flags]")
		fs.PrintDefaults()
		return 0
	}
	if c.version {
		fmt.Fprintf(stdout, "asciify version %s (commit: %s, built: %s)\n", version, commit, date)
		return 0
	}
	if c.presets {
		for _, name := range asciify.PresetNames() {
			set, _ := asciify.Preset(name)
			fmt.Fprintf(stdout, "%-10s %q\n", name, strings.Join(set, ""))
		}
		return 0
	}

	level := slog.LevelWarn
	if c.debug {
		level = slog.LevelDebug
	}
	asciify.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
	defer asciify.SetLogger(nil)

	opts, err := buildOptions(fs, &c)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if c.dumpConfig {
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(opts); err != nil {
			fmt.Fprintf(stderr, "Error encoding options: %v\n", err)
			return 1
		}
		_ = enc.Close()
		return 0
	}

	switch {
	case c.video != "" || c.camera >= 0:
		err = renderVideo(&c, opts)
	case c.spiral:
		err = renderSpiral(&c, opts)
	case c.input != "":
		if c.text || c.ansi {
			err = printImage(&c, opts, stdout)
		} else {
			err = renderImage(&c, opts)
		}
	default:
		fmt.Fprintln(stderr, "Error: provide --input, --video, --camera or --spiral")
		fs.PrintDefaults()
		return 1
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// buildOptions loads the config file, if any, and applies the flags the
// user set explicitly on top of it.
func buildOptions(fs *pflag.FlagSet, c *config) (asciify.Options, error) {
	opts := asciify.DefaultOptions()
	if c.configPath != "" {
		loaded, err := asciify.LoadOptions(c.configPath)
		if err != nil {
			return opts, err
		}
		opts = loaded
	}

	var set []asciify.Option
	if fs.Changed("preset") {
		if _, ok := asciify.Preset(c.preset); !ok {
			return opts, fmt.Errorf("unknown preset %q", c.preset)
		}
		set = append(set, asciify.WithPreset(c.preset))
	}
	if fs.Changed("chars") {
		set = append(set, asciify.WithCharacterSet(c.chars))
	}
	if fs.Changed("font") {
		set = append(set, asciify.WithFontFamily(c.font))
	}
	if fs.Changed("font-size") {
		set = append(set, asciify.WithFontSize(c.fontSize))
	}
	if fs.Changed("spacing") {
		set = append(set, asciify.WithSpacingRatio(c.spacing))
	}
	if fs.Changed("mode") {
		m, ok := asciify.ParseMode(c.mode)
		if !ok {
			return opts, fmt.Errorf("unknown mode %q", c.mode)
		}
		set = append(set, asciify.WithMode(m))
	}
	if fs.Changed("background") {
		if _, ok := asciify.ParseColor(c.background); !ok {
			return opts, fmt.Errorf("invalid background color %q", c.background)
		}
		set = append(set, asciify.WithBackgroundColor(c.background))
	}
	if fs.Changed("pixel-ratio") {
		set = append(set, asciify.WithPixelRatio(c.pixelRatio))
	}
	if fs.Changed("contrast") {
		set = append(set, asciify.WithContrastRatio(c.contrast))
	}
	if fs.Changed("flip-y") {
		set = append(set, asciify.WithFlipY(c.flipY))
	}
	if c.debug {
		set = append(set, asciify.WithDebug(true))
	}
	for _, opt := range set {
		opt(&opts)
	}
	return opts.Normalize(), nil
}

// newRasterizer creates a software surface of width x height logical
// pixels and a rasterizer drawing to it.
func newRasterizer(opts asciify.Options, width, height int) (*asciify.Asciify, *asciify.ImageSurface, error) {
	surface := asciify.NewImageSurface(0, 0)
	a, err := asciify.New(surface, func(o *asciify.Options) { *o = opts })
	if err != nil {
		return nil, nil, err
	}
	a.Resize(width, height, nil)
	if cols, rows := a.Grid(); cols == 0 || rows == 0 {
		a.Close()
		return nil, nil, fmt.Errorf("%dx%d pixels cannot hold a single %dpx cell: %w",
			width, height, opts.CellSize(), asciify.ErrNoGrid)
	}
	return a, surface, nil
}

func outputSize(c *config, src image.Rectangle) (int, int) {
	if c.height > 0 || src.Dx() == 0 {
		return c.width, max(c.height, 1)
	}
	return c.width, max(1, c.width*src.Dy()/src.Dx())
}

func renderImage(c *config, opts asciify.Options) error {
	img, err := imageutil.LoadImage(c.input)
	if err != nil {
		return err
	}
	w, h := outputSize(c, img.Bounds())
	a, surface, err := newRasterizer(opts, w, h)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.RasterizeImage(img); err != nil {
		return err
	}
	logStats(a, 0)
	return imageutil.SaveImage(surface.Image(), c.output)
}

// printImage rasterizes to a text surface. Width and height count
// characters here rather than pixels.
func printImage(c *config, opts asciify.Options, stdout io.Writer) error {
	img, err := imageutil.LoadImage(c.input)
	if err != nil {
		return err
	}
	cell := opts.CellSize()
	cols, rows := c.width, c.height
	if !c.widthSet {
		cols = 80
	}
	if rows <= 0 {
		// Terminal cells are about twice as tall as they are wide.
		rows = max(1, cols*img.Height()/max(img.Width(), 1)/2)
	}

	surface := asciify.NewTextSurface(cell)
	surface.SetSize(cols*cell, rows*cell)
	a, err := asciify.New(surface, func(o *asciify.Options) { *o = opts })
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.RasterizeImage(img); err != nil {
		return err
	}
	logStats(a, 0)
	if c.ansi {
		return surface.WriteANSI(stdout)
	}
	_, err = io.WriteString(stdout, surface.String())
	return err
}

func renderVideo(c *config, opts asciify.Options) error {
	var (
		video *videosource.Video
		err   error
	)
	if c.video != "" {
		video, err = videosource.Open(c.video, false)
	} else {
		video, err = videosource.OpenDevice(c.camera)
	}
	if err != nil {
		return err
	}
	defer video.Close()

	h := c.height
	if h <= 0 {
		h = c.width * 9 / 16
	}
	a, surface, err := newRasterizer(opts, c.width, h)
	if err != nil {
		return err
	}
	defer a.Close()
	a.Resize(c.width, h, video)

	for i := 0; i < c.frames; i++ {
		if err := a.RasterizeRenderer(video); err != nil {
			if errors.Is(err, videosource.ErrEndOfStream) {
				asciify.Logger().Info("video ended", "frames", video.Frames())
				return nil
			}
			return err
		}
		logStats(a, i)
		if err := imageutil.SaveImage(surface.Image(), frameName(c.output, i, c.frames)); err != nil {
			return err
		}
	}
	return nil
}

func renderSpiral(c *config, opts asciify.Options) error {
	h := c.height
	if h <= 0 {
		h = c.width * 9 / 16
	}
	a, surface, err := newRasterizer(opts, c.width, h)
	if err != nil {
		return err
	}
	defer a.Close()

	spiral := &plasma.Spiral{}
	spiral.SetScroll(c.scroll)
	a.Resize(c.width, h, spiral)
	step := time.Duration(float64(time.Second) / max(c.fps, 1))
	for i := 0; i < c.frames; i++ {
		if err := a.RasterizeRenderer(spiral); err != nil {
			return err
		}
		logStats(a, i)
		if err := imageutil.SaveImage(surface.Image(), frameName(c.output, i, c.frames)); err != nil {
			return err
		}
		spiral.Advance(step)
	}
	return nil
}

// frameName numbers output files when more than one frame is written.
func frameName(output string, i, total int) string {
	if total <= 1 {
		return output
	}
	ext := filepath.Ext(output)
	return fmt.Sprintf("%s-%04d%s", strings.TrimSuffix(output, ext), i, ext)
}

func logStats(a *asciify.Asciify, frame int) {
	st := a.Stats()
	cols, rows := a.Grid()
	asciify.Logger().Debug("frame rendered", "frame", frame, "columns", cols, "rows", rows,
		"changed", st.Changed, "glyphs", st.Glyphs, "blocks", st.Blocks, "blank", st.Blank)
}
