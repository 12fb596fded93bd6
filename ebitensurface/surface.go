// Package ebitensurface draws rasterized frames with Ebitengine. Glyph
// textures are uploaded as GPU images in the background and blitted with
// a color matrix that inverts their alpha and applies the cell tint.
package ebitensurface

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/wbrown/asciify"
)

// Surface is an asciify.Surface backed by an offscreen *ebiten.Image.
// Draw calls must come from the game loop.
type Surface struct {
	img     *ebiten.Image
	width   int
	height  int
	scratch *ebiten.Image // glyphs whose upload is still pending
}

var (
	_ asciify.Surface        = (*Surface)(nil)
	_ asciify.BitmapUploader = (*Surface)(nil)
)

// New creates a width x height surface.
func New(width, height int) *Surface {
	s := &Surface{}
	s.SetSize(width, height)
	return s
}

// Image is the offscreen image holding the current frame. It is replaced
// on SetSize and is nil while the surface is empty.
func (s *Surface) Image() *ebiten.Image {
	return s.img
}

// DrawTo copies the frame onto screen at its origin.
func (s *Surface) DrawTo(screen *ebiten.Image) {
	if s.img == nil {
		return
	}
	screen.DrawImage(s.img, nil)
}

func (s *Surface) SetSize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width == s.width && height == s.height && (s.img != nil || width*height == 0) {
		return
	}
	if s.img != nil {
		s.img.Dispose()
		s.img = nil
	}
	s.width, s.height = width, height
	// Ebitengine images cannot be empty.
	if width > 0 && height > 0 {
		s.img = ebiten.NewImage(width, height)
	}
}

func (s *Surface) Size() (int, int) {
	return s.width, s.height
}

func (s *Surface) Fill(c color.NRGBA) {
	if s.img == nil {
		return
	}
	s.img.Fill(c)
}

func (s *Surface) FillRect(r image.Rectangle, c color.NRGBA) {
	if s.img == nil {
		return
	}
	r = r.Intersect(s.img.Bounds())
	if r.Empty() {
		return
	}
	s.img.SubImage(r).(*ebiten.Image).Fill(c)
}

// DrawGlyph blits the texture's uploaded bitmap, or its CPU image through
// a scratch image when the upload has not finished yet.
func (s *Surface) DrawGlyph(tex *asciify.GlyphTexture, x, y int, tint color.NRGBA) {
	if s.img == nil {
		return
	}
	src := s.source(tex)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	// Texture alpha is 255 minus coverage: invert it and replace the
	// neutral color with the tint.
	op.ColorM.Scale(0, 0, 0, -1)
	op.ColorM.Translate(float64(tint.R)/255, float64(tint.G)/255, float64(tint.B)/255, 1)
	op.CompositeMode = ebiten.CompositeModeSourceOver
	s.img.DrawImage(src, op)
}

func (s *Surface) source(tex *asciify.GlyphTexture) *ebiten.Image {
	if b, ok := tex.Bitmap().(*bitmap); ok {
		return b.img
	}
	size := tex.Size()
	if s.scratch != nil {
		if w, h := s.scratch.Size(); w != size || h != size {
			s.scratch.Dispose()
			s.scratch = nil
		}
	}
	if s.scratch == nil {
		s.scratch = ebiten.NewImage(size, size)
	}
	s.scratch.ReplacePixels(tex.Image.Pix)
	return s.scratch
}

// UploadGlyph creates a GPU image for tex. It is called from the glyph
// cache's upgrade goroutines.
func (s *Surface) UploadGlyph(tex *asciify.GlyphTexture) (asciify.Bitmap, error) {
	return &bitmap{img: ebiten.NewImageFromImage(tex.Image)}, nil
}

type bitmap struct {
	img *ebiten.Image
}

func (b *bitmap) Dispose() {
	b.img.Dispose()
}
