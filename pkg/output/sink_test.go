package output

import (
	"context"
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/df07/go-parallel-pathtracer/pkg/core"
	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
)

func TestPNGSink_WritesTimestampedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output", "default")
	sink := NewPNGSink(dir)
	sink.Now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }

	frame := renderer.NewFrameBuffer(3, 2)
	_ = frame.Set(1, 0, core.NewColor(1, 0, 0))

	if err := sink.Upload(context.Background(), frame); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	expected := filepath.Join(dir, "render_20240309_140507.png")
	if sink.LastPath() != expected {
		t.Errorf("Expected %s, got %s", expected, sink.LastPath())
	}

	file, err := os.Open(expected)
	if err != nil {
		t.Fatalf("Expected PNG on disk: %v", err)
	}
	defer file.Close()

	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Errorf("Expected 3x2 image, got %v", img.Bounds())
	}

	r, g, b, a := img.At(1, 0).RGBA()
	if r>>8 != 255 || g != 0 || b != 0 || a>>8 != 255 {
		t.Errorf("Expected red pixel, got %v", img.At(1, 0))
	}
	if got := color.RGBAModel.Convert(img.At(0, 1)).(color.RGBA); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("Expected untouched pixel to stay white, got %v", got)
	}
}

func TestPNGSink_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := NewPNGSink(t.TempDir())
	if err := sink.Upload(ctx, renderer.NewFrameBuffer(1, 1)); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if sink.LastPath() != "" {
		t.Errorf("Expected no file for a cancelled upload, got %s", sink.LastPath())
	}
}

type recordingSink struct {
	frames []*renderer.FrameBuffer
	err    error
}

func (r *recordingSink) Upload(ctx context.Context, frame *renderer.FrameBuffer) error {
	r.frames = append(r.frames, frame)
	return r.err
}

func TestMultiSink(t *testing.T) {
	first := &recordingSink{}
	failing := &recordingSink{err: errors.New("disk full")}
	last := &recordingSink{}

	frame := renderer.NewFrameBuffer(1, 1)
	err := MultiSink{first, failing, last}.Upload(context.Background(), frame)

	if err == nil || err.Error() != "disk full" {
		t.Errorf("Expected the failing sink's error, got %v", err)
	}
	if len(first.frames) != 1 || len(failing.frames) != 1 {
		t.Error("Expected sinks before the failure to receive the frame")
	}
	if len(last.frames) != 0 {
		t.Error("Expected sinks after the failure to be skipped")
	}
}
