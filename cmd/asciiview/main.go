// Command asciiview shows the animated spiral, an image or a video as
// live ASCII art in a window. Keys adjust the options while it runs.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spf13/pflag"
	"github.com/wbrown/asciify"
	"github.com/wbrown/asciify/ebitensurface"
	"github.com/wbrown/asciify/imageutil"
	"github.com/wbrown/asciify/internal/plasma"
	"github.com/wbrown/asciify/videosource"
)

const help = "arrows: font size / contrast  wheel or [ ]: unwind spiral  m: mode  p: preset  f: flip  d: debug  esc: quit"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		input      string
		video      string
		camera     int
		configPath string
		preset     string
		width      int
		height     int
		debug      bool
	)
	pflag.StringVarP(&input, "input", "i", "", "Show an image instead of the spiral")
	pflag.StringVar(&video, "video", "", "Play a video file instead of the spiral")
	pflag.IntVar(&camera, "camera", -1, "Show the capture device with this index instead of the spiral")
	pflag.StringVarP(&configPath, "config", "c", "", "YAML option file")
	pflag.StringVarP(&preset, "preset", "p", "", "Character set preset")
	pflag.IntVarP(&width, "width", "w", 960, "Window width")
	pflag.IntVar(&height, "height", 540, "Window height")
	pflag.BoolVar(&debug, "debug", false, "Log to stderr")
	pflag.Parse()

	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	asciify.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	opts := asciify.DefaultOptions()
	if configPath != "" {
		loaded, err := asciify.LoadOptions(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		opts = loaded
	}
	if preset != "" {
		asciify.WithPreset(preset)(&opts)
	}
	opts.PixelRatio = ebiten.DeviceScaleFactor()

	g, err := newViewer(opts.Normalize(), input, video, camera)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer g.close()

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("asciiview")
	ebiten.SetWindowResizable(true)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, errQuit) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

var errQuit = errors.New("quit")

// viewer is the ebiten.Game driving the rasterizer.
type viewer struct {
	a       *asciify.Asciify
	surface *ebitensurface.Surface

	spiral *plasma.Spiral
	scroll float64
	video  *videosource.Video
	image  *imageutil.RGBAImage

	presets []string
	preset  int
	width   int
	height  int
	dirty   bool
	err     error
}

func newViewer(opts asciify.Options, input, video string, camera int) (*viewer, error) {
	v := &viewer{surface: ebitensurface.New(0, 0), presets: asciify.PresetNames()}
	a, err := asciify.New(v.surface, func(o *asciify.Options) { *o = opts })
	if err != nil {
		return nil, err
	}
	v.a = a

	switch {
	case video != "":
		v.video, err = videosource.Open(video, true)
	case camera >= 0:
		v.video, err = videosource.OpenDevice(camera)
	case input != "":
		v.image, err = imageutil.LoadImage(input)
	default:
		v.spiral = &plasma.Spiral{}
	}
	if err != nil {
		a.Close()
		return nil, err
	}
	return v, nil
}

func (v *viewer) renderer() asciify.Renderer {
	switch {
	case v.video != nil:
		return v.video
	case v.spiral != nil:
		return v.spiral
	}
	return nil
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != v.width || outsideHeight != v.height {
		v.width, v.height = outsideWidth, outsideHeight
		v.a.Resize(outsideWidth, outsideHeight, v.renderer())
		v.dirty = true
	}
	pr := v.a.Options().PixelRatio
	return int(float64(outsideWidth) * pr), int(float64(outsideHeight) * pr)
}

func (v *viewer) Update() error {
	if v.err != nil {
		return v.err
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}

	o := v.a.Options()
	changed := true
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		o.FontSize++
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		o.FontSize--
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		o.ContrastRatio++
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		o.ContrastRatio = max(o.ContrastRatio-1, 0)
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		o.Mode = (o.Mode + 1) % 3
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		v.preset = (v.preset + 1) % len(v.presets)
		asciify.WithPreset(v.presets[v.preset])(&o)
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		o.FlipY = !o.FlipY
	case inpututil.IsKeyJustPressed(ebiten.KeyD):
		o.Debug = !o.Debug
	default:
		changed = false
	}
	if changed {
		v.a.Configure(o)
		v.dirty = true
	}

	if v.spiral != nil {
		_, dy := ebiten.Wheel()
		if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
			dy++
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
			dy--
		}
		if dy != 0 {
			v.scroll = min(max(v.scroll+dy, 0), 14)
			v.spiral.SetScroll(v.scroll)
		}
		v.spiral.Advance(time.Second / time.Duration(ebiten.MaxTPS()))
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	if cols, rows := v.a.Grid(); cols > 0 && rows > 0 {
		var err error
		switch {
		case v.image != nil:
			// Still images only change on resize or reconfigure.
			if v.dirty {
				err = v.a.RasterizeImage(v.image)
			}
		default:
			err = v.a.RasterizeRenderer(v.renderer())
		}
		if err != nil {
			v.err = err
			return
		}
		v.dirty = false
	}
	v.surface.DrawTo(screen)

	o := v.a.Options()
	st := v.a.Stats()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("%s\nset %q  size %.0f  contrast %d  %s  changed %d/%d  %.0f fps",
		help, strings.Join(o.CharacterSet, ""), o.FontSize, o.ContrastRatio, o.Mode,
		st.Changed, st.Cells, ebiten.ActualFPS()))
}

func (v *viewer) close() {
	v.a.Close()
	if v.video != nil {
		_ = v.video.Close()
	}
}
