// Package plasma is a small software renderer used by the demos. It
// draws an animated vortex one pixel per character cell, bottom row
// first like a GPU framebuffer.
package plasma

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrEmpty is returned by ReadPixels before SetSize gave the renderer a
// non-empty size.
var ErrEmpty = errors.New("plasma: renderer has no size")

// Spiral renders the vortex. The zero value is usable once SetSize has
// been called.
type Spiral struct {
	columns, rows int
	elapsed       time.Duration
	scroll        float64
}

// NewSpiral creates a renderer of the given size.
func NewSpiral(columns, rows int) *Spiral {
	s := &Spiral{}
	s.SetSize(columns, rows)
	return s
}

func (s *Spiral) SetSize(columns, rows int) {
	s.columns, s.rows = max(columns, 0), max(rows, 0)
}

// Size returns the size set by SetSize.
func (s *Spiral) Size() (columns, rows int) {
	return s.columns, s.rows
}

// SetTime sets the animation clock.
func (s *Spiral) SetTime(t time.Duration) {
	s.elapsed = t
}

// Advance moves the animation clock forward by d.
func (s *Spiral) Advance(d time.Duration) {
	s.elapsed += d
}

// SetScroll loosens the spiral: 0 is tightly wound, values toward 14
// unwind it.
func (s *Spiral) SetScroll(p float64) {
	s.scroll = max(p, 0)
}

// ReadPixels renders the current frame into dst, bottom row first.
func (s *Spiral) ReadPixels(dst []byte) (bool, error) {
	if s.columns == 0 || s.rows == 0 {
		return true, ErrEmpty
	}
	if want := s.columns * s.rows * 4; len(dst) != want {
		return true, fmt.Errorf("plasma: got %d bytes, want %d", len(dst), want)
	}

	t := float64(s.elapsed) / float64(time.Second) * 40
	power := 1 - smoothstep(0, 1, math.Log(1+s.scroll)/math.Log(15))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for row := 0; row < s.rows; row++ {
		row := row
		g.Go(func() error {
			v := (float64(row) + 0.5) / float64(s.rows)
			line := dst[row*s.columns*4 : (row+1)*s.columns*4]
			for col := 0; col < s.columns; col++ {
				u := (float64(col) + 0.5) / float64(s.columns)
				r, gr, b := vortex(u, v, t, power)
				p := line[col*4 : col*4+4 : col*4+4]
				p[0], p[1], p[2], p[3] = channel(r), channel(gr), channel(b), 255
			}
			return nil
		})
	}
	return true, g.Wait()
}

// vortex shades one pixel at texture coordinate (u, v), v growing upward.
func vortex(u, v, t, power float64) (r, g, b float64) {
	const scale = 1.0 / 40
	sx := 2*u - 1
	x, y := 380*u, 380*v

	cx := 200 + math.Sin(x*scale+t/150)*20
	cy := 140 + math.Cos(y*scale/2)*18 + math.Cos(x*scale)*7

	radius := math.Sqrt(math.Pow(math.Abs(cx-x), power*2) + math.Pow(math.Abs(cy-y), power*2))
	angle := y / radius

	x = radius*math.Cos(angle) - t/2
	y = radius*math.Sin(angle) - t/2

	d := math.Sin(x*scale)*340 + radius
	h := (y + d + t/2) * scale

	in := math.Cos(h+radius*sx/1.3)*(2*x+t) + math.Cos(angle*scale*6)*(radius+h/3)

	h = math.Sin(y*scale)*144 - math.Sin(x*scale)*212*sx
	h = (h + (y-x)*angle + math.Sin(radius-(t+h)/7)*10 + in/4) * scale

	in += math.Cos(h*2.3*math.Sin(t/350-angle))*184*math.Sin(angle-(radius*4.3+t/12)*scale) +
		math.Tan(radius*scale+h)*184*math.Cos(radius*scale+h)
	in = mod(in/5.6, 256) / 64
	if in >= 2 {
		in = 4 - in
	}

	d = radius / 350
	d += math.Sin(d*d*8) * 0.52

	pulse := (math.Sin(t*scale) + 1) / 2
	r = (pulse*in/1.6)*d*sx + (in/1.3+d/8)*d*(1-sx)
	g = (in/2+d/13)*d*sx + (in/2+d/18)*d*(1-sx)
	b = in*d*sx + in*d*(1-sx)
	return r, g, b
}

// mod is a floored modulo, non-negative for positive m.
func mod(x, m float64) float64 {
	return x - m*math.Floor(x/m)
}

func smoothstep(lo, hi, x float64) float64 {
	t := min(max((x-lo)/(hi-lo), 0), 1)
	return t * t * (3 - 2*t)
}

func channel(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
