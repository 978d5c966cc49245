package texture

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"io"

	"github.com/worship-game/maupack/asseterr"
)

var (
	// ErrBadMagic is returned when the data does not start with Magic.
	ErrBadMagic = asseterr.New(asseterr.ErrInputFormat, "texture: invalid magic")

	errNotEnough = asseterr.New(asseterr.ErrInputFormat, "texture: not enough pixel data")
	errTooMuch   = asseterr.New(asseterr.ErrInputFormat, "texture: too much pixel data")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type decoder struct {
	r io.Reader

	width, height uint32

	image *image.NRGBA

	tmp [headerSize]byte
}

func (d *decoder) readHeader() error {
	if err := readFull(d.r, d.tmp[:]); err != nil {
		return err
	}
	if !bytes.Equal(d.tmp[:len(Magic)], Magic[:]) {
		return ErrBadMagic
	}
	d.width = binary.LittleEndian.Uint32(d.tmp[8:])
	d.height = binary.LittleEndian.Uint32(d.tmp[12:])
	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	if err := d.readHeader(); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return errNotEnough
	}

	if configOnly {
		return nil
	}

	// A corrupt header must not size the buffer
	n := Size(d.width, d.height) - headerSize
	pix, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil {
		return err
	}
	if uint64(len(pix)) != n {
		return errNotEnough
	}

	if n, err := r.Read(d.tmp[:1]); n != 0 || (err != io.EOF && err != io.ErrUnexpectedEOF) {
		if err != nil {
			return err
		}
		return errTooMuch
	}

	d.image = &image.NRGBA{
		Pix:    pix,
		Stride: int(d.width) * bytesPerPixel,
		Rect:   image.Rect(0, 0, int(d.width), int(d.height)),
	}

	return nil
}

// Decode reads a MAU texture from r and returns it as an *image.NRGBA.
func Decode(r io.Reader) (image.Image, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// DecodeConfig returns the color model and dimensions of a MAU texture
// without reading the pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(d.width),
		Height:     int(d.height),
	}, nil
}
