package level

import (
	"encoding/json"
	"math"

	"github.com/tidwall/jsonc"
	"github.com/worship-game/maupack/asseterr"
)

// Layer names recognised in a tile map. Layers with any other name are
// ignored.
const (
	LayerTileType       = "tile-type"
	LayerWallTexture    = "tile-texture-wall"
	LayerFloorTexture   = "tile-texture-floor"
	LayerCeilingTexture = "tile-texture-ceiling"
	LayerEntities       = "entities"
)

// TileMap is a tile-map document as exported by the level editor.
type TileMap struct {
	Width  int
	Height int
	Layers []Layer
}

// Layer is either a tile layer with one value per cell in Data, or an
// object layer with Objects.
type Layer struct {
	Name    string
	Data    []int64
	Objects []MapObject
}

// MapObject is an object placed in an object layer, in pixels.
type MapObject struct {
	Name string
	X    float64
	Y    float64
}

type jsonMap struct {
	Width  *int64       `json:"width"`
	Height *int64       `json:"height"`
	Layers *[]jsonLayer `json:"layers"`
}

type jsonLayer struct {
	Name    string       `json:"name"`
	Data    []int64      `json:"data"`
	Objects []jsonObject `json:"objects"`
}

type jsonObject struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

func dimension(name string, v *int64) (int, error) {
	switch {
	case v == nil:
		return 0, asseterr.New(asseterr.ErrInputFormat, "level: missing %q", name)
	case *v < 0:
		return 0, asseterr.New(asseterr.ErrInputFormat, "level: negative %s %d", name, *v)
	case *v > math.MaxUint32:
		return 0, asseterr.New(asseterr.ErrEncodingLimit, "level: %s %d does not fit in 32 bits", name, *v)
	}
	return int(*v), nil
}

// Parse decodes a tile-map document. Comments and trailing commas are
// tolerated. The width, height and layers fields are required.
func Parse(data []byte) (*TileMap, error) {
	var raw jsonMap
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, asseterr.New(asseterr.ErrInputFormat, "level: parsing tile map: %w", err)
	}

	width, err := dimension("width", raw.Width)
	if err != nil {
		return nil, err
	}
	height, err := dimension("height", raw.Height)
	if err != nil {
		return nil, err
	}
	if raw.Layers == nil {
		return nil, asseterr.New(asseterr.ErrInputFormat, "level: missing %q", "layers")
	}

	m := &TileMap{
		Width:  width,
		Height: height,
		Layers: make([]Layer, 0, len(*raw.Layers)),
	}
	for _, l := range *raw.Layers {
		layer := Layer{
			Name: l.Name,
			Data: l.Data,
		}
		if l.Objects != nil {
			layer.Objects = make([]MapObject, 0, len(l.Objects))
			for _, o := range l.Objects {
				layer.Objects = append(layer.Objects, MapObject{Name: o.Name, X: o.X, Y: o.Y})
			}
		}
		m.Layers = append(m.Layers, layer)
	}

	return m, nil
}
