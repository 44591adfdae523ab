package view

import (
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/soocke/vision-edit-go/config"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RegionOverlay is a see-through window the user moves and resizes over the screen to pick
// the rectangle that Screenshot captures. The choice is persisted in the config.
type RegionOverlay struct {
	logger  *slog.Logger
	cfg     *config.Config
	cfgPath string
	win     *ToplevelWidget
	onDone  func(*image.Rectangle)
}

// NewRegionOverlay creates the overlay manager. onDone runs after confirm or clear with the
// new region.
func NewRegionOverlay(cfg *config.Config, cfgPath string, logger *slog.Logger, onDone func(*image.Rectangle)) *RegionOverlay {
	return &RegionOverlay{logger: logger, cfg: cfg, cfgPath: cfgPath, onDone: onDone}
}

// Region returns the persisted region, or nil for the whole display.
func (v *RegionOverlay) Region() *image.Rectangle {
	if v == nil || v.cfg == nil {
		return nil
	}
	return v.cfg.CaptureRegion()
}

// OpenOrFocus shows the overlay at the stored region, or centered when none is stored.
func (v *RegionOverlay) OpenOrFocus() {
	if v.win != nil {
		WmGeometry(v.win.Window)
		return
	}
	win := App.Toplevel(Borderwidth(2), Background("#008080"))
	win.WmTitle("Capture Region")
	v.win = win
	WmGeometry(win.Window, initialGeometry(v.Region(), 1920, 1080))
	WmAttributes(win.Window, "-topmost", 1)
	WmAttributes(win.Window, "-alpha", 0.4)
	GridRowConfigure(win.Window, 0, Weight(1))
	GridColumnConfigure(win.Window, 0, Weight(1))
	center := win.Frame(Background("#008080"))
	Grid(center, Row(0), Column(0), Columnspan(3), Sticky("nsew"))
	controls := win.Frame()
	Grid(controls, Row(1), Column(0), Columnspan(3), Sticky("we"))
	confirm := win.Button(Txt("Confirm [Enter]"), Command(v.confirm))
	Grid(confirm, In(controls), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	cancel := win.Button(Txt("Cancel [Esc]"), Command(v.destroy))
	Grid(cancel, In(controls), Row(0), Column(1), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	clear := win.Button(Txt("Whole Screen"), Command(v.Clear))
	Grid(clear, In(controls), Row(0), Column(2), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	Bind(win, "<Return>", Command(v.confirm))
	Bind(win, "<Escape>", Command(v.destroy))
}

// Clear drops the region so the whole display is captured.
func (v *RegionOverlay) Clear() {
	v.store(nil)
	v.destroy()
}

func (v *RegionOverlay) confirm() {
	if v.win == nil {
		return
	}
	if rect, ok := parseGeometry(WmGeometry(v.win.Window)); ok {
		v.store(&rect)
	}
	v.destroy()
}

func (v *RegionOverlay) store(r *image.Rectangle) {
	if v.cfg != nil {
		v.cfg.SetCaptureRegion(r)
		if err := v.cfg.Save(v.cfgPath); err != nil && v.logger != nil {
			v.logger.Error("config save failed", "error", err)
		}
	}
	if v.logger != nil {
		v.logger.Info("capture region set", "region", fmt.Sprint(r))
	}
	if v.onDone != nil {
		v.onDone(r)
	}
}

func (v *RegionOverlay) destroy() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
}

// initialGeometry returns a Tk geometry string for r, or a centered default on a screenW x
// screenH display.
func initialGeometry(r *image.Rectangle, screenW, screenH int) string {
	if r != nil && !r.Empty() {
		return fmt.Sprintf("%dx%d+%d+%d", r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
	}
	w, h := max(1, screenW*2/3), max(1, screenH*5/9)
	return fmt.Sprintf("%dx%d+%d+%d", w, h, (screenW-w)/2, (screenH-h)/2)
}

// geomRe matches window geometry strings in the format "WIDTHxHEIGHT+X+Y"
var geomRe = regexp.MustCompile(`^(\d+)x(\d+)\+(-?\d+)\+(-?\d+)$`)

// parseGeometry parses a Tk geometry string and returns the corresponding rectangle.
func parseGeometry(g string) (image.Rectangle, bool) {
	m := geomRe.FindStringSubmatch(strings.TrimSpace(g))
	if len(m) != 5 {
		return image.Rectangle{}, false
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	x, _ := strconv.Atoi(m[3])
	y, _ := strconv.Atoi(m[4])
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(x, y, x+w, y+h), true
}
