package asciify

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/vector"
	"golang.org/x/sync/errgroup"
)

// NeutralColor is the color glyphs are painted in. Surfaces tint it by
// multiplying each channel with the sampled color.
var NeutralColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// debugMarkerAlpha is the coverage of the alignment circle drawn behind
// glyphs when Options.Debug is set.
const debugMarkerAlpha = 48

// uploadConcurrency bounds concurrent bitmap uploads per cache.
const uploadConcurrency = 4

// Bitmap is a backend-resident copy of a glyph texture, such as a GPU
// image.
type Bitmap interface {
	Dispose()
}

// BitmapUploader is implemented by surfaces that can keep glyph textures
// in faster, backend-specific storage. Uploads run in the background.
type BitmapUploader interface {
	UploadGlyph(tex *GlyphTexture) (Bitmap, error)
}

// GlyphTexture is one pre-rendered glyph, CellSize pixels square.
//
// Image is non-premultiplied: RGB holds NeutralColor and alpha holds the
// inverted coverage, so 0 means fully inked and 255 means untouched.
// Surfaces composite coverage = 255-A of the (tinted) neutral color.
type GlyphTexture struct {
	Char  string
	Image *image.NRGBA
	// Ink is the number of texels with non-zero glyph coverage.
	Ink int

	bitmap atomic.Pointer[bitmapRef]
}

type bitmapRef struct{ b Bitmap }

// Bitmap returns the uploaded backend form, or nil while the upload is
// pending or when no uploader was used. Callers must fall back to Image.
func (t *GlyphTexture) Bitmap() Bitmap {
	if r := t.bitmap.Load(); r != nil {
		return r.b
	}
	return nil
}

// Coverage returns the glyph coverage at (x, y), 0 to 255.
func (t *GlyphTexture) Coverage(x, y int) uint8 {
	return 255 - t.Image.Pix[t.Image.PixOffset(x, y)+3]
}

// Size returns the side of the square texture.
func (t *GlyphTexture) Size() int {
	return t.Image.Rect.Dx()
}

// GlyphCache holds one texture per luminance bucket. Buckets that share a
// character share a texture, and blank buckets have none. A cache is
// immutable once built, apart from the background bitmap upgrade.
type GlyphCache struct {
	cellSize  int
	glyphSize int
	textures  [LuminanceLevels]*GlyphTexture
	unique    []*GlyphTexture

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// BuildGlyphCache renders every non-blank character of table with face
// at glyphSize pixels, centred in cellSize-square textures.
func BuildGlyphCache(table *GlyphTable, f *truetype.Font, glyphSize, cellSize int, debug bool) *GlyphCache {
	c := &GlyphCache{cellSize: cellSize, glyphSize: glyphSize}
	r := newGlyphRenderer(f, glyphSize, cellSize, debug)
	defer r.close()

	byChar := make(map[string]*GlyphTexture)
	for l := 0; l < LuminanceLevels; l++ {
		ch := table.Character(uint8(l))
		if ch == "" {
			continue
		}
		tex, seen := byChar[ch]
		if !seen {
			tex = r.render(ch)
			byChar[ch] = tex
			if tex != nil {
				c.unique = append(c.unique, tex)
			}
		}
		c.textures[l] = tex
	}
	return c
}

// Texture returns the texture for a luminance bucket, nil when the bucket
// draws nothing.
func (c *GlyphCache) Texture(luminance uint8) *GlyphTexture {
	return c.textures[luminance]
}

// CellSize is the side of every texture in the cache.
func (c *GlyphCache) CellSize() int {
	return c.cellSize
}

// Len is the number of distinct rendered textures.
func (c *GlyphCache) Len() int {
	return len(c.unique)
}

// Upgrade uploads every texture through up in the background. It returns
// immediately; textures keep working from their Image until their upload
// lands. Calling Upgrade twice is a no-op.
func (c *GlyphCache) Upgrade(ctx context.Context, up BitmapUploader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done != nil {
		return
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})

	textures := c.unique
	go func() {
		defer close(c.done)
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(uploadConcurrency)
		for _, tex := range textures {
			tex := tex
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				bm, err := up.UploadGlyph(tex)
				if err != nil {
					return fmt.Errorf("upload glyph %q: %w", tex.Char, err)
				}
				tex.bitmap.Store(&bitmapRef{b: bm})
				return nil
			})
		}
		err := g.Wait()
		if err != nil && !errors.Is(err, context.Canceled) {
			Logger().Warn("asciify: glyph bitmap upgrade failed", "error", err)
		}
		c.err = err
	}()
}

// WaitUpgrade blocks until a started upgrade finishes and returns its
// error. It returns nil at once if no upgrade was started.
func (c *GlyphCache) WaitUpgrade() error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	<-done
	return c.err
}

// Release cancels a pending upgrade and disposes uploaded bitmaps. The
// cache must no longer be drawn from.
func (c *GlyphCache) Release() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.mu.Unlock()
	_ = c.WaitUpgrade()
	for _, tex := range c.unique {
		if r := tex.bitmap.Swap(nil); r != nil && r.b != nil {
			r.b.Dispose()
		}
	}
}

// glyphRenderer owns the scratch state for painting glyphs.
type glyphRenderer struct {
	face      font.Face
	ctx       *freetype.Context
	mask      *image.Alpha
	marker    *image.Alpha
	glyphSize int
	cellSize  int
	baseline  int
}

func newGlyphRenderer(f *truetype.Font, glyphSize, cellSize int, debug bool) *glyphRenderer {
	size := float64(glyphSize)
	face := truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})

	mask := image.NewAlpha(image.Rect(0, 0, cellSize, cellSize))
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(f)
	ctx.SetFontSize(size)
	ctx.SetClip(mask.Bounds())
	ctx.SetDst(mask)
	ctx.SetSrc(image.Opaque)
	ctx.SetHinting(font.HintingFull)

	// Centre the line box (ascent + descent) vertically in the cell.
	m := face.Metrics()
	ascent, descent := m.Ascent.Round(), m.Descent.Round()
	r := &glyphRenderer{
		face:      face,
		ctx:       ctx,
		mask:      mask,
		glyphSize: glyphSize,
		cellSize:  cellSize,
		baseline:  (cellSize + ascent - descent) / 2,
	}
	if debug {
		r.marker = circleMask(cellSize)
	}
	return r
}

func (r *glyphRenderer) close() {
	r.face.Close()
}

// render paints ch and returns its texture, or nil when the font produced
// no ink for it.
func (r *glyphRenderer) render(ch string) *GlyphTexture {
	clear(r.mask.Pix)

	advance := font.MeasureString(r.face, ch).Round()
	x := (r.cellSize - advance) / 2
	if _, err := r.ctx.DrawString(ch, freetype.Pt(x, r.baseline)); err != nil {
		Logger().Debug("asciify: glyph did not render", "char", ch, "error", err)
		return nil
	}

	ink := 0
	for _, a := range r.mask.Pix {
		if a != 0 {
			ink++
		}
	}
	if ink == 0 {
		Logger().Debug("asciify: glyph has no coverage, treating as blank", "char", ch)
		return nil
	}

	img := image.NewNRGBA(r.mask.Rect)
	for i, a := range r.mask.Pix {
		if r.marker != nil {
			a = max(a, r.marker.Pix[i])
		}
		p := img.Pix[i*4 : i*4+4 : i*4+4]
		p[0] = NeutralColor.R
		p[1] = NeutralColor.G
		p[2] = NeutralColor.B
		p[3] = 255 - a
	}
	return &GlyphTexture{Char: ch, Image: img, Ink: ink}
}

// circleMask draws a faint filled circle inscribed in the cell, used to
// check glyph alignment visually.
func circleMask(size int) *image.Alpha {
	m := image.NewAlpha(image.Rect(0, 0, size, size))
	s := float32(size)
	c, rad := s/2, s/2
	const k = 0.5523 // cubic Bézier quarter-circle constant
	z := vector.NewRasterizer(size, size)
	z.MoveTo(c+rad, c)
	z.CubeTo(c+rad, c+k*rad, c+k*rad, c+rad, c, c+rad)
	z.CubeTo(c-k*rad, c+rad, c-rad, c+k*rad, c-rad, c)
	z.CubeTo(c-rad, c-k*rad, c-k*rad, c-rad, c, c-rad)
	z.CubeTo(c+k*rad, c-rad, c+rad, c-k*rad, c+rad, c)
	z.ClosePath()
	z.Draw(m, m.Bounds(), image.NewUniform(color.Alpha{A: debugMarkerAlpha}), image.Point{})
	return m
}
