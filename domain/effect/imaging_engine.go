package effect

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/soocke/vision-edit-go/domain/mask"
)

// ImagingEngine is a CPU reference engine built on imaging filters. Every effect is
// computed over the whole frame and then blended back through the mask weights, so pixels
// outside the region are left untouched.
type ImagingEngine struct{}

// NewImagingEngine returns the reference engine.
func NewImagingEngine() *ImagingEngine { return &ImagingEngine{} }

func (e *ImagingEngine) Apply(id ID, img image.Image, m *mask.Mask, p Params) (image.Image, error) {
	if img == nil {
		return nil, errors.New("effect: nil image")
	}
	base := imaging.Clone(img)
	w, h := base.Bounds().Dx(), base.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, nil
	}
	weights := regionWeights(m, w, h)
	if p.Flag(ParamTargetBackground) {
		invert(weights)
	}

	var out *image.NRGBA
	switch id {
	case Grayscale:
		out = imaging.Grayscale(base)
	case ColorGrading:
		out = colorGrade(base, p)
	case PixelBlur:
		out = pixelBlur(base, p)
	case Portrait:
		// keep the subject sharp and blur what surrounds it
		out = imaging.Blur(base, kernelSigma(p.Number("blur", 51)))
		invert(weights)
		weights = feather(weights, w, h, p.Number("feather", 21))
	case Artistic:
		out = artistic(base, p)
	case Sticker:
		// Cut-out compositing needs a background layer the reference engine does not model.
		return nil, nil
	default:
		return nil, ErrUnknownEffect
	}
	return blend(base, out, weights), nil
}

// regionWeights returns per-pixel blend weights in [0,1]; a nil mask covers everything.
func regionWeights(m *mask.Mask, w, h int) []float64 {
	if m == nil {
		out := make([]float64, w*h)
		for i := range out {
			out[i] = 1
		}
		return out
	}
	weights := m.Weights(w, h)
	for i, v := range weights {
		if v > mask.DefaultThreshold {
			weights[i] = 1
		} else {
			weights[i] = 0
		}
	}
	return weights
}

func invert(weights []float64) {
	for i, v := range weights {
		weights[i] = 1 - v
	}
}

// kernelSigma converts an odd box-style kernel size to a gaussian sigma.
func kernelSigma(k float64) float64 {
	if k < 1 {
		k = 1
	}
	return k / 6
}

// feather softens a weight map by blurring it as a grayscale image.
func feather(weights []float64, w, h int, amount float64) []float64 {
	if amount <= 0 {
		return weights
	}
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i, v := range weights {
		g.Pix[i] = uint8(math.Round(v * 255))
	}
	soft := imaging.Blur(g, kernelSigma(amount))
	out := make([]float64, w*h)
	for i := range out {
		out[i] = float64(soft.Pix[i*4]) / 255
	}
	return out
}

func colorGrade(base *image.NRGBA, p Params) *image.NRGBA {
	out := imaging.AdjustBrightness(base, p.Number("brightness", 0))
	contrast := p.Number("contrast", 10) / 10
	out = imaging.AdjustContrast(out, (contrast-1)*100)
	strength := p.Number("tint_strength", 0) / 100
	if strength <= 0 {
		return out
	}
	tint := p.Color("tint", color.NRGBA{R: 255, G: 140, B: 60, A: 255})
	for i := 0; i+3 < len(out.Pix); i += 4 {
		out.Pix[i] = mix(out.Pix[i], tint.R, strength)
		out.Pix[i+1] = mix(out.Pix[i+1], tint.G, strength)
		out.Pix[i+2] = mix(out.Pix[i+2], tint.B, strength)
	}
	return out
}

// PixelSize returns the pixelation cell size for an intensity in [2,100].
func PixelSize(intensity float64) int {
	return max(2, int(intensity*64/100))
}

// BlurKernel returns the odd blur kernel size for an intensity in [2,100].
func BlurKernel(intensity float64) int {
	k := max(3, int(intensity*51/100))
	if k%2 == 0 {
		k++
	}
	return k
}

func pixelBlur(base *image.NRGBA, p Params) *image.NRGBA {
	intensity := p.Number("intensity", 40)
	w, h := base.Bounds().Dx(), base.Bounds().Dy()
	if !p.Flag("pixelate") {
		return imaging.Blur(base, kernelSigma(float64(BlurKernel(intensity))))
	}
	cell := PixelSize(intensity)
	small := imaging.Resize(base, max(1, w/cell), max(1, h/cell), imaging.Box)
	return imaging.Resize(small, w, h, imaging.NearestNeighbor)
}

func artistic(base *image.NRGBA, p Params) *image.NRGBA {
	sigmaS := p.Number("sigma_s", 60)
	sigmaR := p.Number("sigma_r", 45) / 100
	if p.Flag("sketch") {
		g := imaging.Grayscale(base)
		edges := imaging.Sharpen(g, 1+sigmaR*4)
		shade := p.Number("shade", 5)
		return imaging.AdjustBrightness(imaging.AdjustContrast(edges, 40), shade)
	}
	smooth := imaging.Blur(base, sigmaS/40)
	smooth = imaging.AdjustSaturation(smooth, 35)
	return imaging.Sharpen(smooth, 0.5+sigmaR*2)
}

// blend mixes effected into base by weight; both must share dimensions and origin.
func blend(base, effected *image.NRGBA, weights []float64) *image.NRGBA {
	out := imaging.Clone(base)
	for i, wgt := range weights {
		if wgt <= 0 {
			continue
		}
		o := i * 4
		if o+3 >= len(out.Pix) || o+3 >= len(effected.Pix) {
			break
		}
		for c := 0; c < 4; c++ {
			out.Pix[o+c] = mix(base.Pix[o+c], effected.Pix[o+c], wgt)
		}
	}
	return out
}

func mix(a, b uint8, t float64) uint8 {
	if t >= 1 {
		return b
	}
	v := float64(a) + (float64(b)-float64(a))*t
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}
