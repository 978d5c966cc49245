package texture

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"

	"github.com/ericpauley/go-quantize/quantize"
	"github.com/worship-game/maupack/asseterr"
)

// An Encoder configures encoding of textures.
type Encoder struct {
	// Colors limits the texture to at most this many distinct colors using
	// median cut quantization. Zero writes the source colors unchanged.
	Colors int
}

// Encode writes the Image m to w in MAU texture format.
func Encode(w io.Writer, m image.Image) error {
	var e Encoder
	return e.Encode(w, m)
}

// Encode writes the Image m to w in MAU texture format.
func (enc *Encoder) Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if uint64(b.Dx()) > math.MaxUint32 || uint64(b.Dy()) > math.MaxUint32 {
		return asseterr.New(asseterr.ErrEncodingLimit, "texture: %dx%d image is too large", b.Dx(), b.Dy())
	}

	if enc.Colors > 0 && !b.Empty() {
		m = reduce(m, enc.Colors)
	}

	nm := toNRGBA(m)
	b = nm.Bounds()

	var tmp [headerSize]byte
	copy(tmp[:], Magic[:])
	binary.LittleEndian.PutUint32(tmp[8:], uint32(b.Dx()))
	binary.LittleEndian.PutUint32(tmp[12:], uint32(b.Dy()))

	if _, err := w.Write(tmp[:]); err != nil {
		return err
	}

	// Write out pixel rows, top to bottom
	row := b.Dx() * bytesPerPixel
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := nm.PixOffset(b.Min.X, y)
		if _, err := w.Write(nm.Pix[i : i+row]); err != nil {
			return err
		}
	}

	return nil
}

// Reduce the image to a palette of at most n colors
func reduce(m image.Image, n int) *image.Paletted {
	b := m.Bounds()
	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, n), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)
	return pm
}

// Convert any image to non-premultiplied RGBA. Formats without an alpha
// channel convert to fully opaque pixels.
func toNRGBA(m image.Image) *image.NRGBA {
	if nm, ok := m.(*image.NRGBA); ok {
		return nm
	}

	b := m.Bounds()
	nm := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if pm, ok := m.(*image.Paletted); ok {
		// Convert each palette entry once
		lut := make([]color.NRGBA, len(pm.Palette))
		for i, c := range pm.Palette {
			lut[i] = color.NRGBAModel.Convert(c).(color.NRGBA)
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				idx := int(pm.ColorIndexAt(x, y))
				if idx < len(lut) {
					nm.SetNRGBA(x-b.Min.X, y-b.Min.Y, lut[idx])
				}
			}
		}
		return nm
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			nm.SetNRGBA(x-b.Min.X, y-b.Min.Y, color.NRGBAModel.Convert(m.At(x, y)).(color.NRGBA))
		}
	}
	return nm
}
