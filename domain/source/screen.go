package source

import (
	"fmt"
	"image"

	"github.com/vova616/screenshot"
)

// ScreenSource captures the primary monitor, or Region of it when set.
type ScreenSource struct {
	Region *image.Rectangle
}

func (s *ScreenSource) Name() string {
	if s != nil && s.Region != nil {
		return fmt.Sprintf("screen %dx%d", s.Region.Dx(), s.Region.Dy())
	}
	return "screen"
}

// Load grabs a new frame on every call.
func (s *ScreenSource) Load() (image.Image, error) {
	if s != nil && s.Region != nil && !s.Region.Empty() {
		screen, err := screenshot.ScreenRect()
		if err != nil {
			return nil, fmt.Errorf("source: screen bounds: %w", err)
		}
		r := s.Region.Intersect(screen)
		if r.Empty() {
			return nil, fmt.Errorf("source: region %v outside screen %v", *s.Region, screen)
		}
		img, err := screenshot.CaptureRect(r)
		if err != nil {
			return nil, fmt.Errorf("source: capture region: %w", err)
		}
		return img, nil
	}
	img, err := screenshot.CaptureScreen()
	if err != nil {
		return nil, fmt.Errorf("source: capture screen: %w", err)
	}
	return img, nil
}
