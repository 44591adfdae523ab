package config

import (
	"encoding/json"
	"image"
	"os"
	"time"
)

// Config holds runtime configuration for the canvas, the preview pipeline and app behavior.
// Fields may be loaded from a JSON file and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug"`
	Dark  bool `json:"dark"`

	WindowWidth  int `json:"window_width"`
	WindowHeight int `json:"window_height"`
	// Canvas area inside the window, in screen pixels.
	CanvasWidth  int `json:"canvas_width"`
	CanvasHeight int `json:"canvas_height"`

	// Viewport
	MinZoom  float64 `json:"min_zoom"`
	MaxZoom  float64 `json:"max_zoom"`
	ZoomStep float64 `json:"zoom_step"`

	// Annotation
	HandleRadiusPx float64 `json:"handle_radius_px"`
	MinBoxSizePx   float64 `json:"min_box_size_px"`

	// Masks
	MaskThreshold float64 `json:"mask_threshold"`
	OverlayAlpha  float64 `json:"overlay_alpha"`

	// Preview pipeline
	DebounceMs      int      `json:"debounce_ms"`
	HeavyDebounceMs int      `json:"heavy_debounce_ms"`
	PreviewMaxDim   int      `json:"preview_max_dim"`
	HeavyEffects    []string `json:"heavy_effects"`

	// Screen capture region; a zero width or height captures the whole primary display.
	CaptureX int `json:"capture_x"`
	CaptureY int `json:"capture_y"`
	CaptureW int `json:"capture_w"`
	CaptureH int `json:"capture_h"`

	TickMs int `json:"tick_ms"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:           false,
		Dark:            true,
		WindowWidth:     1280,
		WindowHeight:    820,
		CanvasWidth:     960,
		CanvasHeight:    640,
		MinZoom:         0.5,
		MaxZoom:         10,
		ZoomStep:        1.15,
		HandleRadiusPx:  8,
		MinBoxSizePx:    2,
		MaskThreshold:   0.5,
		OverlayAlpha:    0.45,
		DebounceMs:      80,
		HeavyDebounceMs: 300,
		PreviewMaxDim:   900,
		HeavyEffects:    []string{"artistic"},
		TickMs:          30,
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.WindowWidth < 320 {
		c.WindowWidth = def.WindowWidth
	}
	if c.WindowHeight < 240 {
		c.WindowHeight = def.WindowHeight
	}
	if c.CanvasWidth < 100 {
		c.CanvasWidth = def.CanvasWidth
	}
	if c.CanvasHeight < 100 {
		c.CanvasHeight = def.CanvasHeight
	}
	if c.MinZoom <= 0 {
		c.MinZoom = def.MinZoom
	}
	if c.MaxZoom <= c.MinZoom {
		c.MaxZoom = c.MinZoom * 20
	}
	if c.ZoomStep <= 1 {
		c.ZoomStep = def.ZoomStep
	}
	if c.HandleRadiusPx <= 0 {
		c.HandleRadiusPx = def.HandleRadiusPx
	}
	if c.MinBoxSizePx <= 0 {
		c.MinBoxSizePx = def.MinBoxSizePx
	}
	if c.MaskThreshold <= 0 || c.MaskThreshold >= 1 {
		c.MaskThreshold = def.MaskThreshold
	}
	if c.OverlayAlpha <= 0 || c.OverlayAlpha > 1 {
		c.OverlayAlpha = def.OverlayAlpha
	}
	if c.DebounceMs < 0 {
		c.DebounceMs = def.DebounceMs
	}
	if c.HeavyDebounceMs < c.DebounceMs {
		c.HeavyDebounceMs = c.DebounceMs
	}
	if c.PreviewMaxDim < 64 {
		c.PreviewMaxDim = def.PreviewMaxDim
	}
	if c.HeavyEffects == nil {
		c.HeavyEffects = def.HeavyEffects
	}
	if c.CaptureW < 0 || c.CaptureH < 0 {
		c.CaptureW, c.CaptureH = 0, 0
	}
	if c.TickMs < 5 {
		c.TickMs = def.TickMs
	}
	return nil
}

// Debounce returns the quiet period for ordinary effects.
func (c *Config) Debounce() time.Duration { return time.Duration(c.DebounceMs) * time.Millisecond }

// HeavyDebounce returns the quiet period for effects listed in HeavyEffects.
func (c *Config) HeavyDebounce() time.Duration {
	return time.Duration(c.HeavyDebounceMs) * time.Millisecond
}

// Tick returns the UI update loop interval.
func (c *Config) Tick() time.Duration { return time.Duration(c.TickMs) * time.Millisecond }

// CaptureRegion returns the configured capture rectangle, or nil for the whole display.
func (c *Config) CaptureRegion() *image.Rectangle {
	if c.CaptureW <= 0 || c.CaptureH <= 0 {
		return nil
	}
	r := image.Rect(c.CaptureX, c.CaptureY, c.CaptureX+c.CaptureW, c.CaptureY+c.CaptureH)
	return &r
}

// SetCaptureRegion stores r; nil clears the region.
func (c *Config) SetCaptureRegion(r *image.Rectangle) {
	if r == nil || r.Empty() {
		c.CaptureX, c.CaptureY, c.CaptureW, c.CaptureH = 0, 0, 0, 0
		return
	}
	c.CaptureX, c.CaptureY = r.Min.X, r.Min.Y
	c.CaptureW, c.CaptureH = r.Dx(), r.Dy()
}

// IsHeavy reports whether the effect id is configured as expensive.
func (c *Config) IsHeavy(id string) bool {
	for _, h := range c.HeavyEffects {
		if h == id {
			return true
		}
	}
	return false
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
