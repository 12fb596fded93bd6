package asciify

import (
	"image"
	"image/color"
)

// Surface is the drawing target of a rasterizer. Only the rasterizer
// draws to it. All coordinates are device pixels.
type Surface interface {
	// SetSize resizes the backing store. Contents are undefined after a
	// size change.
	SetSize(width, height int)
	Size() (width, height int)
	// Fill overwrites the whole surface with c.
	Fill(c color.NRGBA)
	// FillRect overwrites r with c.
	FillRect(r image.Rectangle, c color.NRGBA)
	// DrawGlyph composites tex with its top-left corner at (x, y), each
	// channel of the neutral glyph color multiplied by tint.
	DrawGlyph(tex *GlyphTexture, x, y int, tint color.NRGBA)
}

// ImageSurface is a software Surface backed by an *image.RGBA.
type ImageSurface struct {
	img *image.RGBA
}

// NewImageSurface creates a width x height software surface.
func NewImageSurface(width, height int) *ImageSurface {
	return &ImageSurface{img: image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))}
}

// Image returns the backing image. It is replaced on SetSize.
func (s *ImageSurface) Image() *image.RGBA {
	return s.img
}

func (s *ImageSurface) SetSize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if b := s.img.Bounds(); b.Dx() == width && b.Dy() == height {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

func (s *ImageSurface) Size() (int, int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

func (s *ImageSurface) Fill(c color.NRGBA) {
	s.FillRect(s.img.Rect, c)
}

// FillRect overwrites r with c, writing rows directly so that no
// per-call image.Uniform is allocated.
func (s *ImageSurface) FillRect(r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(s.img.Rect)
	if r.Empty() {
		return
	}
	// Premultiply once, as draw.Src would.
	a := uint32(c.A)
	px := [4]uint8{
		uint8(uint32(c.R) * a / 255),
		uint8(uint32(c.G) * a / 255),
		uint8(uint32(c.B) * a / 255),
		c.A,
	}
	first := s.img.Pix[s.img.PixOffset(r.Min.X, r.Min.Y):s.img.PixOffset(r.Max.X, r.Min.Y)]
	for i := 0; i < len(first); i += 4 {
		copy(first[i:i+4], px[:])
	}
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		i := s.img.PixOffset(r.Min.X, y)
		copy(s.img.Pix[i:i+len(first)], first)
	}
}

// DrawGlyph blends the tinted glyph over the surface using the texture's
// coverage as the source alpha.
func (s *ImageSurface) DrawGlyph(tex *GlyphTexture, x, y int, tint color.NRGBA) {
	src := tex.Image
	dst := s.img
	r := image.Rect(x, y, x+src.Rect.Dx(), y+src.Rect.Dy()).Intersect(dst.Rect)
	if r.Empty() {
		return
	}
	for py := r.Min.Y; py < r.Max.Y; py++ {
		si := src.PixOffset(r.Min.X-x, py-y)
		di := dst.PixOffset(r.Min.X, py)
		for px := r.Min.X; px < r.Max.X; px, si, di = px+1, si+4, di+4 {
			cov := 255 - uint32(src.Pix[si+3])
			if cov == 0 {
				continue
			}
			// Premultiplied source: neutral * tint * coverage.
			sr := uint32(src.Pix[si]) * uint32(tint.R) / 255 * cov / 255
			sg := uint32(src.Pix[si+1]) * uint32(tint.G) / 255 * cov / 255
			sb := uint32(src.Pix[si+2]) * uint32(tint.B) / 255 * cov / 255
			inv := 255 - cov
			d := dst.Pix[di : di+4 : di+4]
			d[0] = uint8(sr + uint32(d[0])*inv/255)
			d[1] = uint8(sg + uint32(d[1])*inv/255)
			d[2] = uint8(sb + uint32(d[2])*inv/255)
			d[3] = uint8(cov + uint32(d[3])*inv/255)
		}
	}
}
