package plasma

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestSpiralReadPixels(t *testing.T) {
	s := NewSpiral(16, 9)
	buf := make([]byte, 16*9*4)

	bottomUp, err := s.ReadPixels(buf)
	if err != nil {
		t.Fatalf("ReadPixels failed: %v", err)
	}
	if !bottomUp {
		t.Error("Spiral frames are bottom-up")
	}
	for i := 3; i < len(buf); i += 4 {
		if buf[i] != 255 {
			t.Fatalf("Pixel %d is not opaque", i/4)
		}
	}

	again := make([]byte, len(buf))
	if _, err := s.ReadPixels(again); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, again) {
		t.Error("Same clock should render the same frame")
	}

	s.Advance(500 * time.Millisecond)
	if _, err := s.ReadPixels(again); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(buf, again) {
		t.Error("Advancing the clock should change the frame")
	}
}

func TestSpiralScroll(t *testing.T) {
	s := NewSpiral(16, 9)
	tight := make([]byte, 16*9*4)
	if _, err := s.ReadPixels(tight); err != nil {
		t.Fatal(err)
	}

	s.SetScroll(7)
	loose := make([]byte, len(tight))
	if _, err := s.ReadPixels(loose); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(tight, loose) {
		t.Error("Scrolling should change the frame")
	}

	s.SetScroll(-3)
	again := make([]byte, len(tight))
	if _, err := s.ReadPixels(again); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(tight, again) {
		t.Error("Negative scroll should clamp to the tight spiral")
	}
}

func TestSpiralErrors(t *testing.T) {
	var s Spiral
	if _, err := s.ReadPixels(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}

	s.SetSize(4, -1)
	if c, r := s.Size(); c != 4 || r != 0 {
		t.Errorf("Expected 4x0, got %dx%d", c, r)
	}

	s.SetSize(4, 2)
	if _, err := s.ReadPixels(make([]byte, 5)); err == nil {
		t.Error("Expected error for short buffer")
	}
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		x, m, want float64
	}{
		{5, 4, 1},
		{-1, 4, 3},
		{8, 4, 0},
	}
	for _, tt := range tests {
		if got := mod(tt.x, tt.m); got != tt.want {
			t.Errorf("mod(%v, %v) = %v, want %v", tt.x, tt.m, got, tt.want)
		}
	}
	if smoothstep(0, 1, -3) != 0 || smoothstep(0, 1, 3) != 1 || smoothstep(0, 1, 0.5) != 0.5 {
		t.Error("smoothstep should clamp and be symmetric")
	}
	if channel(-0.2) != 0 || channel(2) != 255 || channel(0.5) != 128 {
		t.Error("channel should clamp to [0, 255]")
	}
}
