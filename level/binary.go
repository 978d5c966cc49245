package level

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/worship-game/maupack/asseterr"
)

var (
	// ErrBadMagic is returned when a level resource does not start with
	// Magic.
	ErrBadMagic = asseterr.New(asseterr.ErrInputFormat, "level: invalid magic")

	errLength = asseterr.New(asseterr.ErrInputFormat, "level: data length does not match header")
)

type header struct {
	Magic       uint64
	Width       uint32
	Height      uint32
	ObjectCount uint32
}

// MarshalBinary encodes the level into binary form and returns the result
func (l *Level) MarshalBinary() ([]byte, error) {
	if uint64(len(l.Tiles)) != uint64(l.Width)*uint64(l.Height) {
		return nil, asseterr.New(asseterr.ErrInputFormat, "level: %d tiles for a %dx%d grid", len(l.Tiles), l.Width, l.Height)
	}
	if uint64(len(l.Objects)) > math.MaxUint32 {
		return nil, asseterr.New(asseterr.ErrEncodingLimit, "level: too many objects")
	}

	b := new(bytes.Buffer)
	b.Grow(headerSize + len(l.Tiles)*tileSize + len(l.Objects)*objectSize)

	h := header{
		Magic:       Magic,
		Width:       l.Width,
		Height:      l.Height,
		ObjectCount: uint32(len(l.Objects)),
	}
	if err := binary.Write(b, binary.LittleEndian, &h); err != nil {
		return nil, err
	}

	// Write out tiles in row-major order
	if err := binary.Write(b, binary.LittleEndian, l.Tiles); err != nil {
		return nil, err
	}

	// Write out objects in layer order
	if err := binary.Write(b, binary.LittleEndian, l.Objects); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// UnmarshalBinary decodes the level from binary form
func (l *Level) UnmarshalBinary(b []byte) error {
	r := bytes.NewReader(b)

	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return errLength
	}
	if h.Magic != Magic {
		return ErrBadMagic
	}

	tiles := uint64(h.Width) * uint64(h.Height)
	if uint64(r.Len()) != tiles*tileSize+uint64(h.ObjectCount)*objectSize {
		return errLength
	}

	l.Width = h.Width
	l.Height = h.Height
	l.Tiles = make([]Tile, tiles)
	l.Objects = make([]Object, h.ObjectCount)

	if err := binary.Read(r, binary.LittleEndian, l.Tiles); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, l.Objects); err != nil {
		return err
	}

	return nil
}
