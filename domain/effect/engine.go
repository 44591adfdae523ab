package effect

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/soocke/vision-edit-go/domain/mask"
)

// ErrUnknownEffect is returned for ids the engine does not implement.
var ErrUnknownEffect = errors.New("effect: unknown effect")

// Engine applies one effect to one mask region. A nil image with a nil error means the
// effect had nothing to do and the input should be kept. Implementations must not mutate img.
type Engine interface {
	Apply(id ID, img image.Image, m *mask.Mask, p Params) (image.Image, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(id ID, img image.Image, m *mask.Mask, p Params) (image.Image, error)

func (f EngineFunc) Apply(id ID, img image.Image, m *mask.Mask, p Params) (image.Image, error) {
	return f(id, img, m, p)
}

// Fold applies the effect once per mask in order, feeding each output into the next call.
// ctx is checked before every call; on cancellation the context error is returned.
func Fold(ctx context.Context, eng Engine, id ID, src image.Image, masks []*mask.Mask, p Params) (image.Image, error) {
	if eng == nil {
		return nil, errors.New("effect: nil engine")
	}
	cur := src
	for i, m := range masks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := eng.Apply(id, cur, m, p)
		if err != nil {
			return nil, fmt.Errorf("apply %s to mask %d: %w", id, i, err)
		}
		if next != nil {
			cur = next
		}
	}
	return cur, ctx.Err()
}
