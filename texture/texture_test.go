package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worship-game/maupack/asseterr"
)

func encode(t *testing.T, m image.Image) []byte {
	t.Helper()
	b := new(bytes.Buffer)
	require.NoError(t, Encode(b, m))
	return b.Bytes()
}

func TestEncodeLayout(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	m.SetNRGBA(0, 0, color.NRGBA{0x10, 0x20, 0x30, 0x40})
	m.SetNRGBA(1, 0, color.NRGBA{0x50, 0x60, 0x70, 0x80})

	want := []byte{
		0x4d, 0x41, 0x55, 0x04, 0x02, 0x74, 0x65, 0x78,
		0x02, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00,
		0x10, 0x20, 0x30, 0x40,
		0x50, 0x60, 0x70, 0x80,
	}
	assert.Equal(t, want, encode(t, m))
}

func TestEncodeSize(t *testing.T) {
	tables := []struct {
		name  string
		image image.Image
	}{
		{"nrgba", image.NewNRGBA(image.Rect(0, 0, 7, 3))},
		{"rgba", image.NewRGBA(image.Rect(0, 0, 5, 5))},
		{"gray", image.NewGray(image.Rect(0, 0, 1, 9))},
		{"paletted", image.NewPaletted(image.Rect(0, 0, 4, 2), color.Palette{color.Black})},
		{"offset", image.NewNRGBA(image.Rect(3, 4, 6, 8))},
		{"empty", image.NewNRGBA(image.Rect(0, 0, 0, 0))},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			b := table.image.Bounds()
			out := encode(t, table.image)
			assert.Equal(t, Size(uint32(b.Dx()), uint32(b.Dy())), uint64(len(out)))
			assert.Equal(t, 8+4+4+b.Dx()*b.Dy()*4, len(out))
		})
	}
}

func TestEncodeOpaqueSources(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range g.Pix {
		g.Pix[i] = uint8(i * 40)
	}

	out := encode(t, g)
	pix := out[headerSize:]
	require.Len(t, pix, 3*2*4)
	for i := 0; i < len(pix); i += 4 {
		v := g.Pix[i/4]
		assert.Equal(t, []byte{v, v, v, 0xff}, pix[i:i+4])
	}
}

func TestEncodePalettedTransparency(t *testing.T) {
	p := color.Palette{
		color.NRGBA{0xff, 0x00, 0x00, 0xff},
		color.NRGBA{0x00, 0xff, 0x00, 0x80},
	}
	m := image.NewPaletted(image.Rect(0, 0, 2, 1), p)
	m.SetColorIndex(1, 0, 1)

	out := encode(t, m)
	assert.Equal(t, []byte{0xff, 0x00, 0x00, 0xff, 0x00, 0xff, 0x00, 0x80}, out[headerSize:])
}

func TestEncodeRowOrder(t *testing.T) {
	m := image.NewNRGBA(image.Rect(10, 20, 12, 22))
	m.SetNRGBA(10, 20, color.NRGBA{1, 1, 1, 1})
	m.SetNRGBA(11, 20, color.NRGBA{2, 2, 2, 2})
	m.SetNRGBA(10, 21, color.NRGBA{3, 3, 3, 3})
	m.SetNRGBA(11, 21, color.NRGBA{4, 4, 4, 4})

	out := encode(t, m)
	assert.Equal(t, []byte{1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3, 4, 4, 4, 4}, out[headerSize:])
}

func TestRoundTrip(t *testing.T) {
	m := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			m.Set(x, y, color.RGBA{uint8(x * 60), uint8(y * 80), 0x33, 0xff})
		}
	}

	out := encode(t, m)

	decoded, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "mautex", format)
	assert.Equal(t, m.Bounds(), decoded.Bounds())
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, color.NRGBAModel.Convert(m.At(x, y)), decoded.At(x, y))
		}
	}

	config, err := DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 4, config.Width)
	assert.Equal(t, 3, config.Height)
}

func TestDecodeErrors(t *testing.T) {
	good := encode(t, image.NewNRGBA(image.Rect(0, 0, 2, 2)))

	bad := append([]byte(nil), good...)
	bad[0] = 'X'

	tables := []struct {
		name string
		data []byte
		err  error
	}{
		{"magic", bad, ErrBadMagic},
		{"header", good[:10], errNotEnough},
		{"pixels", good[:len(good)-1], errNotEnough},
		{"trailing", append(append([]byte(nil), good...), 0), errTooMuch},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := Decode(bytes.NewReader(table.data))
			assert.True(t, errors.Is(err, table.err))
			assert.True(t, errors.Is(err, asseterr.ErrInputFormat))
		})
	}
}

func TestEncoderColors(t *testing.T) {
	m := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	shades := []color.NRGBA{
		{0xff, 0x00, 0x00, 0xff},
		{0xf0, 0x00, 0x00, 0xff},
		{0x00, 0x00, 0xff, 0xff},
		{0x00, 0x00, 0xf0, 0xff},
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			m.SetNRGBA(x, y, shades[x])
		}
	}

	b := new(bytes.Buffer)
	e := Encoder{Colors: 2}
	require.NoError(t, e.Encode(b, m))
	require.Equal(t, Size(4, 4), uint64(b.Len()))

	unique := make(map[[4]byte]struct{})
	pix := b.Bytes()[headerSize:]
	for i := 0; i < len(pix); i += 4 {
		var c [4]byte
		copy(c[:], pix[i:i+4])
		unique[c] = struct{}{}
	}
	assert.LessOrEqual(t, len(unique), 2)
}
