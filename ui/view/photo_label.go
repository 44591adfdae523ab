package view

import (
	"image"

	"github.com/soocke/vision-edit-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// photoLabel is a label showing one Tk photo. The previous photo is deleted on every update
// so off-screen pixel data does not accumulate.
type photoLabel struct {
	label *LabelWidget
	photo *Img
}

func newPhotoLabel(w, h int, opts ...Opt) *photoLabel {
	placeholder := image.NewRGBA(image.Rect(0, 0, max(1, w), max(1, h)))
	photo := NewPhoto(Data(images.EncodePNG(placeholder)))
	opts = append([]Opt{Image(photo)}, opts...)
	return &photoLabel{label: Label(opts...), photo: photo}
}

func (p *photoLabel) show(img image.Image) {
	if p == nil || p.label == nil || img == nil {
		return
	}
	next := NewPhoto(Data(images.EncodePNG(img)))
	p.label.Configure(Image(next))
	if p.photo != nil {
		p.photo.Delete()
	}
	p.photo = next
}
