/*
Package level compiles tile-map documents exported by the level editor into
MAU level resources, and reads those resources back.

A level resource is a 20 byte header (the tag 7815552959266505037, then
width, height and object count, all little-endian), followed by width*height
7 byte tile records in row-major order and then one 9 byte record per placed
object:

	tile:   type u8 | wall u16 | floor u16 | ceiling u16
	object: type u8 | x float32 | y float32

Object positions are in tile units.
*/
package level

const (
	// Magic is the tag every level resource starts with.
	Magic uint64 = 7815552959266505037

	// TileSize is the editor's tile size in pixels.
	TileSize = 32

	// TilesetSize is the number of tiles along each side of an editor
	// tile sheet.
	TilesetSize = 16

	headerSize = 20
	tileSize   = 7
	objectSize = 9
)

// Editor tile sheets referenced by layer values
const (
	sheetType    = 0
	sheetTexture = 1
)

// Tile is one cell of the level grid.
type Tile struct {
	Type    uint8
	Wall    uint16
	Floor   uint16
	Ceiling uint16
}

// Object is an entity placed in the level.
type Object struct {
	Type ObjectType
	X    float32
	Y    float32
}

// Level is a compiled level. Tiles holds Width*Height cells indexed by
// y*Width+x.
type Level struct {
	Width   uint32
	Height  uint32
	Tiles   []Tile
	Objects []Object
}

// Tile returns the tile at x, y.
func (l *Level) Tile(x, y int) Tile {
	return l.Tiles[y*int(l.Width)+x]
}
