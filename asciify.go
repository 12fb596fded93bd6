// Package asciify converts raster pixel buffers (still images, video
// frames, renderer output) into a grid of monospaced glyphs drawn on a 2D
// surface, approximating luminance and optionally color.
//
// The expensive structures are built on Configure and Resize: the
// luminance to glyph table, the glyph texture cache and the coordinate
// lookup table. Rasterize walks the lookup table once per frame, skips
// cells whose sampled pixel did not change since the previous frame and
// blits pre-rendered glyphs for the rest. It does not allocate.
//
// An Asciify is not safe for concurrent use; calls are expected to come
// from a single render loop.
package asciify

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/golang/freetype/truetype"
	"github.com/wbrown/asciify/imageutil"
)

// FrameStats describes the work done by the last Rasterize call.
type FrameStats struct {
	Cells   int  // cells in the grid
	Changed int  // cells whose sample differed from the previous frame
	Glyphs  int  // glyph blits
	Blocks  int  // solid cell fills in block mode
	Blank   int  // changed cells that drew no glyph
	Cleared bool // whole surface was filled with the background
}

// Asciify is the per-frame rasterizer.
type Asciify struct {
	surface Surface
	opts    Options
	bg      color.NRGBA

	font   *truetype.Font
	table  *GlyphTable
	glyphs *GlyphCache
	lookup *LookupTable
	frame  *FrameBuffer

	// Last requested logical size and the renderer told about it. The size
	// is fractional when it was derived from device pixels.
	width, height float64
	renderer      Renderer

	// Reused per-frame buffers for the convenience wrappers.
	scratch   *imageutil.RGBAImage
	renderBuf []byte

	stats FrameStats
}

// New creates a rasterizer drawing to surface, configured from the
// defaults and opts. The initial grid covers the surface's current size.
func New(surface Surface, opts ...Option) (*Asciify, error) {
	if surface == nil {
		return nil, ErrNilSurface
	}
	o := NewOptions(opts...)
	// Start from the surface's current size, in logical pixels.
	w, h := surface.Size()
	a := &Asciify{
		surface: surface,
		lookup:  BuildLookupTable(0, 0, 1),
		frame:   NewFrameBuffer(0),
		width:   float64(w) / o.PixelRatio,
		height:  float64(h) / o.PixelRatio,
	}
	a.Configure(o)
	return a, nil
}

// Configure normalizes o and rebuilds the glyph table, the glyph cache,
// the lookup table and the frame buffer. Everything is built before it is
// swapped in, so a rasterization after Configure always sees a consistent
// set. The grid is recomputed for the last Resize size and the attached
// renderer, if any, is told the new grid size.
func (a *Asciify) Configure(o Options) {
	o = o.Normalize()

	f := a.font
	if f == nil || o.FontFamily != a.opts.FontFamily {
		f = loadFontOrDefault(o.FontFamily)
	}
	table := BuildGlyphTable(o.CharacterSet, o.ContrastRatio)
	glyphs := BuildGlyphCache(table, f, o.GlyphSize(), o.CellSize(), o.Debug)
	if up, ok := a.surface.(BitmapUploader); ok {
		glyphs.Upgrade(context.Background(), up)
	}

	old := a.glyphs
	a.opts, a.bg, a.font, a.table, a.glyphs = o, o.Background(), f, table, glyphs
	if old != nil {
		go old.Release()
	}

	Logger().Debug("asciify: configured",
		"mode", o.Mode, "fontSize", o.FontSize, "cellSize", o.CellSize(),
		"glyphs", glyphs.Len(), "contrast", o.ContrastRatio)

	a.resize(a.width, a.height, a.renderer)
}

// Options returns the effective, normalized options.
func (a *Asciify) Options() Options {
	o := a.opts
	o.CharacterSet = append([]string(nil), a.opts.CharacterSet...)
	return o
}

// Resize sets the logical surface size. The surface backing store becomes
// width*pixelRatio x height*pixelRatio device pixels and the grid as many
// whole cells as fit. When r is non-nil it is told to render at exactly
// columns x rows and is remembered for later Configure calls.
func (a *Asciify) Resize(width, height int, r Renderer) {
	a.resize(float64(width), float64(height), r)
}

func (a *Asciify) resize(width, height float64, r Renderer) {
	a.width, a.height = max(width, 0), max(height, 0)
	if r != nil {
		a.renderer = r
	}

	cell := a.opts.CellSize()
	devW := int(math.Round(a.width * a.opts.PixelRatio))
	devH := int(math.Round(a.height * a.opts.PixelRatio))
	cols, rows := devW/cell, devH/cell

	a.surface.SetSize(devW, devH)
	a.lookup = BuildLookupTable(rows, cols, cell)
	a.frame.Reset(rows * cols)

	if a.scratch == nil || a.scratch.Width() != cols || a.scratch.Height() != rows {
		a.scratch = imageutil.NewRGBAImage(cols, rows)
		a.renderBuf = make([]byte, rows*cols*4)
	}
	if a.renderer != nil {
		a.renderer.SetSize(cols, rows)
	}

	Logger().Debug("asciify: resized",
		"width", devW, "height", devH, "columns", cols, "rows", rows)
}

// Grid returns the current grid dimensions in cells.
func (a *Asciify) Grid() (columns, rows int) {
	return a.lookup.Columns, a.lookup.Rows
}

// BufferSize is the RGBA buffer length Rasterize expects.
func (a *Asciify) BufferSize() int {
	return a.lookup.BufferSize()
}

// CharacterForLuminance previews the glyph table: it returns the character
// drawn for a luminance bucket, or "" for blank buckets.
func (a *Asciify) CharacterForLuminance(luminance uint8) string {
	return a.table.Character(luminance)
}

// Stats reports the work done by the last Rasterize call.
func (a *Asciify) Stats() FrameStats {
	return a.stats
}

// Rasterize draws one frame from buf, a columns x rows RGBA buffer with
// stride columns*4. flipY marks buf as bottom-up. Cells whose sample is
// unchanged since the previous frame are skipped. Unless persist is set,
// changed cells are repainted with the background before their glyph is
// drawn, and the whole surface is cleared when every cell is redrawn
// after a Configure or Resize; with persist the frame composites over
// whatever the surface already holds.
func (a *Asciify) Rasterize(buf []byte, flipY, persist bool) error {
	n := a.lookup.Len()
	if n == 0 {
		return ErrNoGrid
	}
	if len(buf) != n*4 {
		return fmt.Errorf("%w: got %d bytes, want %d for %dx%d cells",
			ErrBufferSize, len(buf), n*4, a.lookup.Columns, a.lookup.Rows)
	}

	st := FrameStats{Cells: n}
	full := a.frame.Stale()
	if full && !persist {
		a.surface.Fill(a.bg)
		st.Cleared = true
	}

	cell := a.lookup.CellSize
	mode := a.opts.Mode
	for i, c := range a.lookup.Cells(flipY) {
		o := c.Offset
		r, g, b, al := buf[o], buf[o+1], buf[o+2], buf[o+3]
		if !a.frame.Update(i, r, g, b, al) {
			continue
		}
		st.Changed++

		rect := image.Rect(c.X, c.Y, c.X+cell, c.Y+cell)
		if !persist && !full {
			a.surface.FillRect(rect, a.bg)
		}
		if al == 0 {
			st.Blank++
			continue
		}

		switch mode {
		case ModeBlock:
			a.surface.FillRect(rect, color.NRGBA{R: r, G: g, B: b, A: 255})
			st.Blocks++
		case ModeGrayscale:
			tex := a.glyphs.Texture(Luminance(r, g, b))
			if tex == nil {
				st.Blank++
				continue
			}
			a.surface.DrawGlyph(tex, c.X, c.Y, NeutralColor)
			st.Glyphs++
		default:
			tex := a.glyphs.Texture(Luminance(r, g, b))
			if tex == nil {
				st.Blank++
				continue
			}
			a.surface.DrawGlyph(tex, c.X, c.Y, color.NRGBA{R: r, G: g, B: b, A: 255})
			st.Glyphs++
		}
	}
	a.frame.commit()
	a.stats = st

	if a.opts.Debug {
		Logger().Debug("asciify: frame", "cells", st.Cells, "changed", st.Changed,
			"glyphs", st.Glyphs, "blocks", st.Blocks, "cleared", st.Cleared)
	}
	return nil
}

// Invalidate forces the next frame to redraw every cell, for example
// after something else drew over the surface.
func (a *Asciify) Invalidate() {
	a.frame.Invalidate()
}

// RasterizeImage resizes img to exactly the grid size and rasterizes it.
// Options.FlipY mirrors the output vertically.
func (a *Asciify) RasterizeImage(img image.Image) error {
	if img == nil {
		return ErrNilSource
	}
	if a.lookup.Len() == 0 {
		return ErrNoGrid
	}
	imageutil.ResizeInto(a.scratch, img, imageutil.InterpolationArea)
	return a.Rasterize(a.scratch.Pix, a.opts.FlipY, false)
}

// RasterizeRenderer reads the renderer's last frame and rasterizes it.
// The renderer must already render at the grid size; Resize with the
// renderer arranges that. Options.FlipY mirrors the output vertically.
func (a *Asciify) RasterizeRenderer(r Renderer) error {
	if r == nil {
		return ErrNilSource
	}
	if a.lookup.Len() == 0 {
		return ErrNoGrid
	}
	bottomUp, err := r.ReadPixels(a.renderBuf)
	if err != nil {
		return fmt.Errorf("failed to read renderer pixels: %w", err)
	}
	return a.Rasterize(a.renderBuf, bottomUp != a.opts.FlipY, false)
}

// Close releases the glyph cache, including any uploaded bitmaps.
func (a *Asciify) Close() {
	if a.glyphs != nil {
		a.glyphs.Release()
	}
}
