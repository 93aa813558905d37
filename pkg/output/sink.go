package output

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/df07/go-parallel-pathtracer/pkg/renderer"
)

// FrameSink receives finished frames for presentation
type FrameSink interface {
	Upload(ctx context.Context, frame *renderer.FrameBuffer) error
}

// PNGSink writes every uploaded frame to Dir as render_<timestamp>.png
type PNGSink struct {
	Dir string

	// Now returns the timestamp used in file names; time.Now when nil
	Now func() time.Time

	lastPath string
}

// NewPNGSink creates a sink writing into dir
func NewPNGSink(dir string) *PNGSink {
	return &PNGSink{Dir: dir}
}

// Upload encodes the frame as PNG
func (s *PNGSink) Upload(ctx context.Context, frame *renderer.FrameBuffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	filename := filepath.Join(s.Dir, fmt.Sprintf("render_%s.png", now().Format("20060102_150405")))

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	defer file.Close()

	if err := png.Encode(file, frame.ToImage()); err != nil {
		return fmt.Errorf("encode %s: %w", filename, err)
	}

	s.lastPath = filename
	return nil
}

// LastPath returns the file written by the most recent successful upload
func (s *PNGSink) LastPath() string {
	return s.lastPath
}

// MultiSink uploads each frame to every sink in order, stopping at the first error
type MultiSink []FrameSink

// Upload implements FrameSink
func (m MultiSink) Upload(ctx context.Context, frame *renderer.FrameBuffer) error {
	for _, sink := range m {
		if err := sink.Upload(ctx, frame); err != nil {
			return err
		}
	}
	return nil
}
