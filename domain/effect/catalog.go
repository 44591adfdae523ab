package effect

import (
	"image/color"
)

// ID names an effect.
type ID string

const (
	ColorGrading ID = "color_grading"
	Artistic     ID = "artistic"
	Sticker      ID = "sticker"
	PixelBlur    ID = "pixel_blur"
	Portrait     ID = "portrait"
	Grayscale    ID = "grayscale"
)

// Parameter names shared by several effects.
const (
	ParamTargetBackground = "target_bg"
)

// NumberSpec describes a numeric slider.
type NumberSpec struct {
	Name    string
	Label   string
	Min     float64
	Max     float64
	Default float64
	Step    float64
}

// Clamp limits v to [Min, Max].
func (s NumberSpec) Clamp(v float64) float64 {
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// FlagSpec describes a boolean toggle.
type FlagSpec struct {
	Name    string
	Label   string
	Default bool
}

// ColorSpec describes a color choice.
type ColorSpec struct {
	Name    string
	Label   string
	Default color.NRGBA
}

// Info is the static description of one effect.
type Info struct {
	ID      ID
	Name    string // display name, used in the applied-effects log
	Heavy   bool   // expensive enough to preview at reduced resolution with a longer debounce
	Numbers []NumberSpec
	Flags   []FlagSpec
	Colors  []ColorSpec
}

// Number returns the named numeric parameter.
func (i Info) Number(name string) (NumberSpec, bool) {
	for _, s := range i.Numbers {
		if s.Name == name {
			return s, true
		}
	}
	return NumberSpec{}, false
}

// Defaults returns a fresh parameter set holding every default value.
func (i Info) Defaults() Params {
	p := NewParams()
	for _, s := range i.Numbers {
		p.Numbers[s.Name] = s.Default
	}
	for _, s := range i.Flags {
		p.Flags[s.Name] = s.Default
	}
	for _, s := range i.Colors {
		p.Colors[s.Name] = s.Default
	}
	return p
}

var targetBackground = FlagSpec{Name: ParamTargetBackground, Label: "Target background"}

var catalog = []Info{
	{
		ID:   ColorGrading,
		Name: "Color Grading",
		Numbers: []NumberSpec{
			{Name: "tint_strength", Label: "Tint", Min: 0, Max: 100, Default: 0, Step: 5},
			{Name: "brightness", Label: "Brightness", Min: -100, Max: 100, Default: 0, Step: 5},
			{Name: "contrast", Label: "Contrast", Min: 0, Max: 30, Default: 10, Step: 1},
		},
		Flags:  []FlagSpec{targetBackground},
		Colors: []ColorSpec{{Name: "tint", Label: "Tint color", Default: color.NRGBA{R: 255, G: 140, B: 60, A: 255}}},
	},
	{
		ID:    Artistic,
		Name:  "Artistic Style",
		Heavy: true,
		Numbers: []NumberSpec{
			{Name: "sigma_s", Label: "Smoothing", Min: 1, Max: 200, Default: 60, Step: 5},
			{Name: "sigma_r", Label: "Edge keep", Min: 1, Max: 100, Default: 45, Step: 5},
			{Name: "shade", Label: "Shade", Min: 0, Max: 100, Default: 5, Step: 1},
		},
		Flags: []FlagSpec{{Name: "sketch", Label: "Pencil sketch"}, targetBackground},
	},
	{
		ID:   Sticker,
		Name: "Sticker Gen",
		Numbers: []NumberSpec{
			{Name: "scale", Label: "Scale", Min: 1, Max: 30, Default: 10, Step: 1},
			{Name: "rotation", Label: "Rotation", Min: -180, Max: 180, Default: 0, Step: 5},
			{Name: "thickness", Label: "Border", Min: 0, Max: 50, Default: 15, Step: 1},
			{Name: "shadow", Label: "Shadow", Min: 0, Max: 50, Default: 15, Step: 1},
		},
		Colors: []ColorSpec{{Name: "border", Label: "Border color", Default: color.NRGBA{R: 255, G: 255, B: 255, A: 255}}},
	},
	{
		ID:   PixelBlur,
		Name: "Pixelation & Blur",
		Numbers: []NumberSpec{
			{Name: "intensity", Label: "Intensity", Min: 2, Max: 100, Default: 40, Step: 2},
		},
		Flags: []FlagSpec{{Name: "pixelate", Label: "Pixelate", Default: true}, targetBackground},
	},
	{
		ID:   Portrait,
		Name: "Portrait Effect",
		Numbers: []NumberSpec{
			{Name: "blur", Label: "Background blur", Min: 1, Max: 151, Default: 51, Step: 2},
			{Name: "feather", Label: "Feather", Min: 0, Max: 101, Default: 21, Step: 2},
		},
	},
	{
		ID:    Grayscale,
		Name:  "Grayscale",
		Flags: []FlagSpec{targetBackground},
	},
}

// Catalog returns every known effect in display order.
func Catalog() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the description of id.
func Lookup(id ID) (Info, bool) {
	for _, i := range catalog {
		if i.ID == id {
			return i, true
		}
	}
	return Info{}, false
}

// DisplayName returns the human readable name of id, or the id itself when unknown.
func DisplayName(id ID) string {
	if i, ok := Lookup(id); ok {
		return i.Name
	}
	return string(id)
}
