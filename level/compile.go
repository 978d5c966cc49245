package level

import (
	"math"

	"github.com/worship-game/maupack/asseterr"
)

// Upper bound on the grid size accepted by Compile.
const maxTiles = 1 << 24

// RemapTileIndex converts an editor tile value into an index local to the
// given tile sheet. Editor values number the tiles of every sheet globally
// starting at 1, with 0 meaning empty; anything that falls below the sheet
// maps to 0.
func RemapTileIndex(value int64, sheet int) int64 {
	index := value - TilesetSize*TilesetSize*int64(sheet) - 1
	if index < 0 {
		index = 0
	}
	return index
}

func setType(t *Tile, v int64) error {
	if v > math.MaxUint8 {
		return asseterr.New(asseterr.ErrEncodingLimit, "level: tile type %d does not fit in 8 bits", v)
	}
	t.Type = uint8(v)
	return nil
}

func setTexture(field func(*Tile) *uint16) func(*Tile, int64) error {
	return func(t *Tile, v int64) error {
		if v > math.MaxUint16 {
			return asseterr.New(asseterr.ErrEncodingLimit, "level: texture index %d does not fit in 16 bits", v)
		}
		*field(t) = uint16(v)
		return nil
	}
}

var (
	setWall    = setTexture(func(t *Tile) *uint16 { return &t.Wall })
	setFloor   = setTexture(func(t *Tile) *uint16 { return &t.Floor })
	setCeiling = setTexture(func(t *Tile) *uint16 { return &t.Ceiling })
)

func (l *Level) applyLayer(layer Layer, sheet int, set func(*Tile, int64) error) error {
	if layer.Data == nil {
		return asseterr.New(asseterr.ErrInputFormat, "level: layer %q has no data", layer.Name)
	}
	if len(layer.Data) != len(l.Tiles) {
		return asseterr.New(asseterr.ErrInputFormat, "level: layer %q has %d cells, want %d", layer.Name, len(layer.Data), len(l.Tiles))
	}
	for i, v := range layer.Data {
		if err := set(&l.Tiles[i], RemapTileIndex(v, sheet)); err != nil {
			return err
		}
	}
	return nil
}

func (l *Level) applyObjects(layer Layer) error {
	if layer.Objects == nil {
		return asseterr.New(asseterr.ErrInputFormat, "level: layer %q has no objects", layer.Name)
	}
	for _, o := range layer.Objects {
		t, err := ParseObjectType(o.Name)
		if err != nil {
			return err
		}
		l.Objects = append(l.Objects, Object{
			Type: t,
			X:    float32(o.X / TileSize),
			Y:    float32(o.Y / TileSize),
		})
	}
	if uint64(len(l.Objects)) > math.MaxUint32 {
		return asseterr.New(asseterr.ErrEncodingLimit, "level: too many objects")
	}
	return nil
}

// Compile builds a level from a tile map. Every tile starts zeroed and each
// recognised layer fills in its field; objects keep their layer order.
func Compile(m *TileMap) (*Level, error) {
	if m.Width < 0 || m.Height < 0 {
		return nil, asseterr.New(asseterr.ErrInputFormat, "level: invalid size %dx%d", m.Width, m.Height)
	}
	if uint64(m.Width) > math.MaxUint32 || uint64(m.Height) > math.MaxUint32 || uint64(m.Width)*uint64(m.Height) > maxTiles {
		return nil, asseterr.New(asseterr.ErrEncodingLimit, "level: size %dx%d is too large", m.Width, m.Height)
	}

	l := &Level{
		Width:   uint32(m.Width),
		Height:  uint32(m.Height),
		Tiles:   make([]Tile, m.Width*m.Height),
		Objects: []Object{},
	}

	for _, layer := range m.Layers {
		var err error
		switch layer.Name {
		case LayerTileType:
			err = l.applyLayer(layer, sheetType, setType)
		case LayerWallTexture:
			err = l.applyLayer(layer, sheetTexture, setWall)
		case LayerFloorTexture:
			err = l.applyLayer(layer, sheetTexture, setFloor)
		case LayerCeilingTexture:
			err = l.applyLayer(layer, sheetTexture, setCeiling)
		case LayerEntities:
			err = l.applyObjects(layer)
		}
		if err != nil {
			return nil, err
		}
	}

	return l, nil
}
