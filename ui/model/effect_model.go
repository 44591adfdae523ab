package model

import (
	"image/color"

	"github.com/soocke/vision-edit-go/domain/effect"
)

// EffectChangedListener is called after the active effect or one of its parameters changed.
type EffectChangedListener func(active effect.ID)

// EffectModel tracks which effect is active and the parameter values of every effect.
// Values persist per effect while switching between them.
type EffectModel struct {
	active    effect.ID
	params    map[effect.ID]effect.Params
	listeners []EffectChangedListener
}

// NewEffectModel seeds every catalog effect with its defaults. No effect is active.
func NewEffectModel() *EffectModel {
	m := &EffectModel{params: map[effect.ID]effect.Params{}}
	for _, info := range effect.Catalog() {
		m.params[info.ID] = info.Defaults()
	}
	return m
}

// OnChange registers l.
func (m *EffectModel) OnChange(l EffectChangedListener) {
	if l != nil {
		m.listeners = append(m.listeners, l)
	}
}

// Active returns the active effect and whether one is active.
func (m *EffectModel) Active() (effect.ID, bool) { return m.active, m.active != "" }

// Toggle activates id, or deactivates it when it is already active. Unknown ids are ignored.
func (m *EffectModel) Toggle(id effect.ID) {
	if _, ok := m.params[id]; !ok {
		return
	}
	if m.active == id {
		m.active = ""
	} else {
		m.active = id
	}
	m.notify()
}

// Deactivate clears the active effect.
func (m *EffectModel) Deactivate() {
	if m.active == "" {
		return
	}
	m.active = ""
	m.notify()
}

// Params returns a snapshot of id's values.
func (m *EffectModel) Params(id effect.ID) effect.Params {
	p, ok := m.params[id]
	if !ok {
		return effect.NewParams()
	}
	return p.Clone()
}

// SetNumber stores a numeric parameter of the active effect, clamped to its range.
func (m *EffectModel) SetNumber(name string, v float64) bool {
	info, ok := effect.Lookup(m.active)
	if !ok {
		return false
	}
	spec, ok := info.Number(name)
	if !ok {
		return false
	}
	v = spec.Clamp(v)
	p := m.params[m.active]
	if cur, set := p.Numbers[name]; set && cur == v {
		return false
	}
	p.Numbers[name] = v
	m.notify()
	return true
}

// Nudge moves a numeric parameter of the active effect by steps increments.
func (m *EffectModel) Nudge(name string, steps int) bool {
	info, ok := effect.Lookup(m.active)
	if !ok {
		return false
	}
	spec, ok := info.Number(name)
	if !ok {
		return false
	}
	cur := m.params[m.active].Number(name, spec.Default)
	return m.SetNumber(name, cur+float64(steps)*spec.Step)
}

// ToggleFlag flips a boolean parameter of the active effect.
func (m *EffectModel) ToggleFlag(name string) bool {
	info, ok := effect.Lookup(m.active)
	if !ok || !hasFlag(info, name) {
		return false
	}
	p := m.params[m.active]
	p.Flags[name] = !p.Flags[name]
	m.notify()
	return true
}

// SetColor stores a color parameter of the active effect.
func (m *EffectModel) SetColor(name string, c color.NRGBA) bool {
	info, ok := effect.Lookup(m.active)
	if !ok || !hasColor(info, name) {
		return false
	}
	m.params[m.active].Colors[name] = c
	m.notify()
	return true
}

// ResetCurrent restores the defaults of the active effect.
func (m *EffectModel) ResetCurrent() bool {
	info, ok := effect.Lookup(m.active)
	if !ok {
		return false
	}
	m.params[m.active] = info.Defaults()
	m.notify()
	return true
}

func (m *EffectModel) notify() {
	for _, l := range m.listeners {
		l(m.active)
	}
}

func hasFlag(info effect.Info, name string) bool {
	for _, f := range info.Flags {
		if f.Name == name {
			return true
		}
	}
	return false
}

func hasColor(info effect.Info, name string) bool {
	for _, c := range info.Colors {
		if c.Name == name {
			return true
		}
	}
	return false
}
