package source

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func writeImage(t *testing.T, name string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	img.Set(1, 1, color.NRGBA{R: 200, A: 255})
	path := filepath.Join(t.TempDir(), name)
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestFileSource_LoadsSupportedFormats(t *testing.T) {
	for _, name := range []string{"a.png", "b.JPG", "c.jpeg", "d.bmp"} {
		path := writeImage(t, name)
		src, err := NewFileSource(path)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		img, err := src.Load()
		if err != nil {
			t.Fatalf("%s load: %v", name, err)
		}
		if img.Bounds().Size() != image.Pt(6, 4) {
			t.Fatalf("%s: unexpected size %v", name, img.Bounds())
		}
		if src.Name() != name {
			t.Fatalf("name got=%q", src.Name())
		}
	}
}

func TestFileSource_RejectsUnsupported(t *testing.T) {
	if _, err := NewFileSource("notes.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got=%v", err)
	}
	if _, err := (&FileSource{Path: "x.gif"}).Load(); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat from Load, got=%v", err)
	}
}

func TestFileSource_CorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := (&FileSource{Path: path}).Load(); err == nil {
		t.Fatalf("expected decode error")
	}
	if _, err := (&FileSource{Path: filepath.Join(t.TempDir(), "missing.webp")}).Load(); err == nil {
		t.Fatalf("expected error for missing webp")
	}
}

func TestImageSource_ReturnsCopy(t *testing.T) {
	orig := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src := &ImageSource{Label: "mem", Image: orig}
	img, err := src.Load()
	if err != nil {
		t.Fatal(err)
	}
	img.(*image.NRGBA).Set(0, 0, color.NRGBA{G: 255, A: 255})
	if orig.NRGBAAt(0, 0).G != 0 {
		t.Fatalf("load must not share pixels with the wrapped image")
	}
	if _, err := (&ImageSource{}).Load(); err == nil {
		t.Fatalf("expected error for empty source")
	}
}
