package mask

import (
	"errors"
	"image/color"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/soocke/vision-edit-go/domain/viewport"
)

// DefaultThreshold separates inside from outside when a probability grid is binarized.
const DefaultThreshold = 0.5

// ErrEmptyGrid is returned when a mask is built from a grid without cells.
var ErrEmptyGrid = errors.New("mask: empty grid")

// Mask is a read-only probability grid with display metadata. Rows index y, columns x.
// Its resolution may differ from the image it annotates; lookups resample on demand.
type Mask struct {
	grid  *mat.Dense
	Color color.NRGBA
	Score float64
}

// New wraps a probability grid. The grid is not copied and must not be mutated afterwards.
func New(grid *mat.Dense, score float64) (*Mask, error) {
	if grid == nil || grid.IsEmpty() {
		return nil, ErrEmptyGrid
	}
	return &Mask{grid: grid, Score: score, Color: color.NRGBA{R: 255, G: 255, B: 255, A: 255}}, nil
}

// FromRows builds a mask from row-major probability rows. All rows must share a length.
func FromRows(rows [][]float64, score float64) (*Mask, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	w := len(rows[0])
	data := make([]float64, 0, len(rows)*w)
	for _, r := range rows {
		if len(r) != w {
			return nil, errors.New("mask: ragged rows")
		}
		data = append(data, r...)
	}
	return New(mat.NewDense(len(rows), w, data), score)
}

// Width returns the number of grid columns.
func (m *Mask) Width() int {
	if m == nil || m.grid == nil {
		return 0
	}
	_, c := m.grid.Dims()
	return c
}

// Height returns the number of grid rows.
func (m *Mask) Height() int {
	if m == nil || m.grid == nil {
		return 0
	}
	r, _ := m.grid.Dims()
	return r
}

// At returns the raw probability at grid cell (x,y), or 0 outside the grid.
func (m *Mask) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= m.Width() || y >= m.Height() {
		return 0
	}
	return m.grid.At(y, x)
}

// Sample returns the nearest grid value for an image-space point on an image of size img.
// Points outside the image yield 0.
func (m *Mask) Sample(p viewport.Point, img viewport.Size) float64 {
	if m == nil || img.Empty() {
		return 0
	}
	px := int(p.X)
	py := int(p.Y)
	if p.X < 0 || p.Y < 0 || float64(px) >= img.W || float64(py) >= img.H {
		return 0
	}
	mx := int(float64(px) / img.W * float64(m.Width()))
	my := int(float64(py) / img.H * float64(m.Height()))
	return m.At(mx, my)
}

// Contains reports whether the image point lies inside the mask at the default threshold.
func (m *Mask) Contains(p viewport.Point, img viewport.Size) bool {
	return m.Sample(p, img) > DefaultThreshold
}

// Weights bilinearly resamples the grid to w x h and returns row-major values.
// When the size already matches the grid the values are copied unchanged.
func (m *Mask) Weights(w, h int) []float64 {
	if m == nil || w <= 0 || h <= 0 {
		return nil
	}
	out := make([]float64, w*h)
	gw, gh := m.Width(), m.Height()
	if gw == w && gh == h {
		for y := 0; y < h; y++ {
			mat.Row(out[y*w:(y+1)*w], y, m.grid)
		}
		return out
	}
	sx := float64(gw) / float64(w)
	sy := float64(gh) / float64(h)
	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)*sy - 0.5
		y0 := int(math.Floor(fy))
		ty := fy - float64(y0)
		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)*sx - 0.5
			x0 := int(math.Floor(fx))
			tx := fx - float64(x0)
			v00 := m.clampedAt(x0, y0)
			v10 := m.clampedAt(x0+1, y0)
			v01 := m.clampedAt(x0, y0+1)
			v11 := m.clampedAt(x0+1, y0+1)
			top := v00 + (v10-v00)*tx
			bot := v01 + (v11-v01)*tx
			out[y*w+x] = top + (bot-top)*ty
		}
	}
	return out
}

// Binary resamples to w x h and thresholds, returning a row-major inside/outside slice.
func (m *Mask) Binary(w, h int, threshold float64) []bool {
	weights := m.Weights(w, h)
	if weights == nil {
		return nil
	}
	out := make([]bool, len(weights))
	for i, v := range weights {
		out[i] = v > threshold
	}
	return out
}

func (m *Mask) clampedAt(x, y int) float64 {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if w := m.Width(); x >= w {
		x = w - 1
	}
	if h := m.Height(); y >= h {
		y = h - 1
	}
	return m.grid.At(y, x)
}

// paletteSeed fixes the color sequence so a given segmentation always gets the same colors.
const paletteSeed = 42

// AssignColors gives every mask a distinct opaque color drawn from a fixed-seed sequence
// with channels in [80,255).
func AssignColors(masks []*Mask) {
	rng := rand.New(rand.NewSource(paletteSeed))
	for _, m := range masks {
		c := color.NRGBA{
			R: uint8(80 + rng.Intn(175)),
			G: uint8(80 + rng.Intn(175)),
			B: uint8(80 + rng.Intn(175)),
			A: 255,
		}
		if m != nil {
			m.Color = c
		}
	}
}
