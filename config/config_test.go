package config

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	before := *cfg
	_ = cfg.Validate()
	if cfg.MinZoom != before.MinZoom || cfg.MaxZoom != before.MaxZoom || cfg.DebounceMs != before.DebounceMs || cfg.PreviewMaxDim != before.PreviewMaxDim {
		t.Fatalf("defaults changed by Validate: before=%+v after=%+v", before, *cfg)
	}
	if !cfg.IsHeavy("artistic") || cfg.IsHeavy("grayscale") {
		t.Fatalf("unexpected heavy set: %v", cfg.HeavyEffects)
	}
}

func TestValidate_ClampsOutOfRange(t *testing.T) {
	cfg := &Config{MinZoom: -1, MaxZoom: 0, ZoomStep: 0.5, MaskThreshold: 2, OverlayAlpha: 0, DebounceMs: 100, HeavyDebounceMs: 10, PreviewMaxDim: 1}
	_ = cfg.Validate()
	if cfg.MinZoom != 0.5 || cfg.MaxZoom <= cfg.MinZoom {
		t.Fatalf("zoom not clamped: min=%v max=%v", cfg.MinZoom, cfg.MaxZoom)
	}
	if cfg.ZoomStep != 1.15 || cfg.MaskThreshold != 0.5 || cfg.OverlayAlpha != 0.45 {
		t.Fatalf("unexpected values step=%v threshold=%v alpha=%v", cfg.ZoomStep, cfg.MaskThreshold, cfg.OverlayAlpha)
	}
	if cfg.HeavyDebounceMs != 100 {
		t.Fatalf("heavy debounce should not be shorter than ordinary debounce, got=%d", cfg.HeavyDebounceMs)
	}
	if cfg.PreviewMaxDim != 900 {
		t.Fatalf("preview max dim not reset, got=%d", cfg.PreviewMaxDim)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DebounceMs != 80 || cfg.HeavyDebounceMs != 300 {
		t.Fatalf("expected defaults, got debounce=%d heavy=%d", cfg.DebounceMs, cfg.HeavyDebounceMs)
	}
}

func TestLoad_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if cfg == nil || cfg.PreviewMaxDim != 900 {
		t.Fatalf("expected defaults alongside error, got %+v", cfg)
	}
}

func TestSave_PersistsEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	cfg := DefaultConfig()
	cfg.DebounceMs = 50
	cfg.HeavyEffects = []string{"artistic", "portrait"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.DebounceMs != 50 || !got.IsHeavy("portrait") {
		t.Fatalf("edits not persisted: debounce=%d heavy=%v", got.DebounceMs, got.HeavyEffects)
	}
}

func TestCaptureRegion(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.CaptureRegion() != nil {
		t.Fatalf("expected no region by default")
	}
	r := image.Rect(10, 20, 110, 70)
	cfg.SetCaptureRegion(&r)
	got := cfg.CaptureRegion()
	if got == nil || *got != r {
		t.Fatalf("region got=%v", got)
	}
	cfg.SetCaptureRegion(nil)
	if cfg.CaptureRegion() != nil || cfg.CaptureW != 0 {
		t.Fatalf("expected region cleared")
	}
}
