package presenter

// Loop aggregates feature presenters and drives periodic updates.
//
// Background results are drained first so that the canvas redraw at the end of a tick
// already reflects them. The zero value is usable (methods are nil-safe).
type Loop struct {
	Image   *ImagePresenter
	Effects *EffectPresenter
	Preview *PreviewPresenter
	Masks   *MaskPresenter
	Canvas  *CanvasPresenter
	After   func()
}

func NewLoop(img *ImagePresenter, effects *EffectPresenter, preview *PreviewPresenter, masks *MaskPresenter, canvas *CanvasPresenter, after func()) *Loop {
	return &Loop{Image: img, Effects: effects, Preview: preview, Masks: masks, Canvas: canvas, After: after}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	l.Image.Tick()
	l.Effects.Tick()
	l.Preview.Tick()
	l.Masks.Tick()
	l.Canvas.Tick()
	if l.After != nil {
		l.After()
	}
}
