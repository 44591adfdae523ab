package view

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/soocke/vision-edit-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// ConfigPanel is the settings form. It writes back into *config.Config and persists on
// Apply; most values take effect on the next start.
type ConfigPanel struct {
	cfg      *config.Config
	cfgPath  string
	logger   *slog.Logger
	frame    *FrameWidget
	applyBtn *ButtonWidget
	widgets  map[string]*TextWidget // keyed by internal field id
}

// NewConfigPanel creates the view bound to cfg.
func NewConfigPanel(cfg *config.Config, cfgPath string, logger *slog.Logger) *ConfigPanel {
	return &ConfigPanel{cfg: cfg, cfgPath: cfgPath, logger: logger, widgets: make(map[string]*TextWidget)}
}

// Build constructs the form inside a new frame and returns it.
func (v *ConfigPanel) Build() *FrameWidget {
	c := v.cfg
	v.frame = Frame(Borderwidth(1), Relief("groove"))
	row := 0
	makeRow := func(id, label, value string) {
		lbl := Label(Txt(label), Anchor("w"))
		Grid(lbl, In(v.frame), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
		w := Text(Height(1), Width(10))
		Grid(w, In(v.frame), Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		setText(w, value)
		v.widgets[id] = w
		row++
	}
	makeRow("debounceMs", "Preview Debounce ms", fmt.Sprintf("%d", c.DebounceMs))
	makeRow("heavyDebounceMs", "Heavy Debounce ms", fmt.Sprintf("%d", c.HeavyDebounceMs))
	makeRow("previewMaxDim", "Preview Max Dim px", fmt.Sprintf("%d", c.PreviewMaxDim))
	makeRow("heavyEffects", "Heavy Effects (comma list)", strings.Join(c.HeavyEffects, ","))
	makeRow("overlayAlpha", "Overlay Alpha (0-1)", fmt.Sprintf("%.2f", c.OverlayAlpha))
	makeRow("maskThreshold", "Mask Threshold (0-1)", fmt.Sprintf("%.2f", c.MaskThreshold))
	makeRow("zoomStep", "Zoom Step", fmt.Sprintf("%.3f", c.ZoomStep))
	makeRow("handleRadius", "Handle Radius px", fmt.Sprintf("%.1f", c.HandleRadiusPx))
	makeRow("minBoxSize", "Min Box Size px", fmt.Sprintf("%.1f", c.MinBoxSizePx))
	makeRow("dark", "Dark Mode (true/false)", fmt.Sprintf("%t", c.Dark))
	makeRow("debug", "Debug (true/false)", fmt.Sprintf("%t", c.Debug))
	v.applyBtn = Button(Txt("Save Settings"), Command(func() { v.ApplyChanges() }))
	Grid(v.applyBtn, In(v.frame), Row(row), Column(0), Columnspan(2), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	return v.frame
}

// SetEditable toggles every field and the save button.
func (v *ConfigPanel) SetEditable(enabled bool) {
	state := "disabled"
	if enabled {
		state = "normal"
	}
	for _, w := range v.widgets {
		if w != nil {
			w.Configure(State(state))
		}
	}
	if v.applyBtn != nil {
		v.applyBtn.Configure(State(state))
	}
}

// ApplyChanges parses the fields into the config and saves it.
func (v *ConfigPanel) ApplyChanges() {
	if v.cfg == nil {
		return
	}
	cfg := *v.cfg // copy
	assignFloat := func(id string, dst *float64) {
		if f, ok := parseFloatField(textOf(v.widgets[id])); ok {
			*dst = f
		}
	}
	assignInt := func(id string, dst *int) {
		if i, ok := parseIntField(textOf(v.widgets[id])); ok {
			*dst = i
		}
	}
	assignBool := func(id string, dst *bool) {
		if b, ok := parseBoolLoose(textOf(v.widgets[id])); ok {
			*dst = b
		}
	}
	assignInt("debounceMs", &cfg.DebounceMs)
	assignInt("heavyDebounceMs", &cfg.HeavyDebounceMs)
	assignInt("previewMaxDim", &cfg.PreviewMaxDim)
	assignFloat("overlayAlpha", &cfg.OverlayAlpha)
	assignFloat("maskThreshold", &cfg.MaskThreshold)
	assignFloat("zoomStep", &cfg.ZoomStep)
	assignFloat("handleRadius", &cfg.HandleRadiusPx)
	assignFloat("minBoxSize", &cfg.MinBoxSizePx)
	assignBool("dark", &cfg.Dark)
	assignBool("debug", &cfg.Debug)
	if w := v.widgets["heavyEffects"]; w != nil {
		cfg.HeavyEffects = splitList(textOf(w))
	}
	if verr := cfg.Validate(); verr != nil {
		return
	}
	*v.cfg = cfg
	if err := v.cfg.Save(v.cfgPath); err != nil {
		if v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	} else {
		if v.logger != nil {
			v.logger.Info("config saved", "path", v.cfgPath)
		}
	}
}

// parsing helpers (unexported)
func parseFloatField(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
func parseIntField(s string) (int, bool) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return i, true
}
func parseBoolLoose(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "on", "t":
		return true, true
	case "false", "0", "no", "n", "off", "f":
		return false, true
	default:
		return false, false
	}
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
