// Package videosource feeds decoded video frames to a rasterizer. Frames
// are decoded with OpenCV and scaled to the character grid before they
// are handed over, one pixel per cell.
package videosource

import (
	"errors"
	"fmt"
	"image"

	"github.com/wbrown/asciify"
	"gocv.io/x/gocv"
)

// ErrEndOfStream is returned by ReadPixels when the video has no more
// frames and looping is off.
var ErrEndOfStream = errors.New("videosource: end of stream")

// Video reads frames from a file or capture device. It implements
// asciify.Renderer.
type Video struct {
	capture *gocv.VideoCapture
	frame   gocv.Mat
	small   gocv.Mat
	rgba    gocv.Mat

	columns, rows int
	loop          bool
	frames        int
}

var _ asciify.Renderer = (*Video)(nil)

// Open opens a video file. With loop set, playback restarts at the first
// frame instead of ending.
func Open(path string, loop bool) (*Video, error) {
	capture, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open video %s: %w", path, err)
	}
	return newVideo(capture, loop), nil
}

// OpenDevice opens a camera by index.
func OpenDevice(id int) (*Video, error) {
	capture, err := gocv.VideoCaptureDevice(id)
	if err != nil {
		return nil, fmt.Errorf("could not open capture device %d: %w", id, err)
	}
	return newVideo(capture, false), nil
}

func newVideo(capture *gocv.VideoCapture, loop bool) *Video {
	return &Video{
		capture: capture,
		frame:   gocv.NewMat(),
		small:   gocv.NewMat(),
		rgba:    gocv.NewMat(),
		loop:    loop,
	}
}

// FPS is the stream's nominal frame rate, 0 when unknown.
func (v *Video) FPS() float64 {
	return v.capture.Get(gocv.VideoCaptureFPS)
}

// Frames is the number of frames read so far.
func (v *Video) Frames() int {
	return v.frames
}

// SetSize sets the size frames are scaled to.
func (v *Video) SetSize(columns, rows int) {
	v.columns, v.rows = max(columns, 0), max(rows, 0)
}

// ReadPixels decodes the next frame into dst as columns x rows RGBA.
func (v *Video) ReadPixels(dst []byte) (bool, error) {
	if v.columns == 0 || v.rows == 0 {
		return false, asciify.ErrNoGrid
	}
	if want := v.columns * v.rows * 4; len(dst) != want {
		return false, fmt.Errorf("%w: got %d bytes, want %d", asciify.ErrBufferSize, len(dst), want)
	}

	if !v.capture.Read(&v.frame) || v.frame.Empty() {
		if !v.loop || v.frames == 0 {
			return false, ErrEndOfStream
		}
		asciify.Logger().Debug("videosource: looping", "frames", v.frames)
		v.capture.Set(gocv.VideoCapturePosFrames, 0)
		if !v.capture.Read(&v.frame) || v.frame.Empty() {
			return false, ErrEndOfStream
		}
	}
	v.frames++

	gocv.Resize(v.frame, &v.small, image.Pt(v.columns, v.rows), 0, 0, gocv.InterpolationArea)
	gocv.CvtColor(v.small, &v.rgba, gocv.ColorBGRToRGBA)
	copy(dst, v.rgba.ToBytes())
	return false, nil
}

// Close releases the capture and its frame buffers.
func (v *Video) Close() error {
	var errs []error
	for _, m := range []*gocv.Mat{&v.frame, &v.small, &v.rgba} {
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := v.capture.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
