package effect

import (
	"image/color"
	"maps"
)

// Params holds the current values of one effect's parameters. Snapshots handed to
// background work must be taken with Clone.
type Params struct {
	Numbers map[string]float64
	Flags   map[string]bool
	Colors  map[string]color.NRGBA
}

// NewParams returns an empty, writable parameter set.
func NewParams() Params {
	return Params{
		Numbers: map[string]float64{},
		Flags:   map[string]bool{},
		Colors:  map[string]color.NRGBA{},
	}
}

// Clone returns a deep copy that shares no maps with p.
func (p Params) Clone() Params {
	out := NewParams()
	maps.Copy(out.Numbers, p.Numbers)
	maps.Copy(out.Flags, p.Flags)
	maps.Copy(out.Colors, p.Colors)
	return out
}

// Number returns the named value or def when unset.
func (p Params) Number(name string, def float64) float64 {
	if v, ok := p.Numbers[name]; ok {
		return v
	}
	return def
}

// Flag returns the named toggle, false when unset.
func (p Params) Flag(name string) bool { return p.Flags[name] }

// Color returns the named color or def when unset.
func (p Params) Color(name string, def color.NRGBA) color.NRGBA {
	if v, ok := p.Colors[name]; ok {
		return v
	}
	return def
}
