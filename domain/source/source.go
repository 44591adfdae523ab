package source

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for files whose extension is not a known image type.
var ErrUnsupportedFormat = errors.New("source: unsupported image format")

// Source yields an image to edit. Load is called again when the session is reset, so a
// source must be able to reproduce its image.
type Source interface {
	Name() string
	Load() (image.Image, error)
}

var supportedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".webp": true,
}

// Supported reports whether path has an extension FileSource can decode.
func Supported(path string) bool {
	return supportedExt[strings.ToLower(filepath.Ext(path))]
}

// FileSource loads an image from disk.
type FileSource struct {
	Path string
}

// NewFileSource validates the extension of path without touching the file.
func NewFileSource(path string) (*FileSource, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return &FileSource{Path: path}, nil
}

func (s *FileSource) Name() string { return filepath.Base(s.Path) }

// Load decodes the file with imaging, honoring EXIF orientation. WebP files that the
// registered decoder rejects are retried with the libwebp binding.
func (s *FileSource) Load() (image.Image, error) {
	if s == nil || s.Path == "" {
		return nil, errors.New("source: no path")
	}
	if !Supported(s.Path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(s.Path))
	}
	img, err := imaging.Open(s.Path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	if strings.ToLower(filepath.Ext(s.Path)) != ".webp" {
		return nil, fmt.Errorf("source: decode %s: %w", s.Path, err)
	}
	f, ferr := os.Open(s.Path)
	if ferr != nil {
		return nil, fmt.Errorf("source: open %s: %w", s.Path, ferr)
	}
	defer f.Close()
	img, werr := webp.Decode(f)
	if werr != nil {
		return nil, fmt.Errorf("source: decode webp %s: %w", s.Path, errors.Join(err, werr))
	}
	return img, nil
}

// ImageSource wraps an in-memory image, e.g. one pasted or produced by a test.
type ImageSource struct {
	Label string
	Image image.Image
}

func (s *ImageSource) Name() string { return s.Label }

// Load returns an independent copy so edits never reach the wrapped image.
func (s *ImageSource) Load() (image.Image, error) {
	if s == nil || s.Image == nil {
		return nil, errors.New("source: no image")
	}
	return imaging.Clone(s.Image), nil
}

var (
	_ Source = (*FileSource)(nil)
	_ Source = (*ImageSource)(nil)
	_ Source = (*ScreenSource)(nil)
)
