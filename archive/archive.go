/*
Package archive implements the MAU resource archive, a single file holding
many resources behind an index that the engine reads at load time.

The file starts with the 8 byte tag 0x726100020455414D and the entry count,
both little-endian 64-bit values. The index follows with one record per
entry:

	name length u16 | name | type u8 | offset u64 | size u64 | checksum u32

Names are relative, slash separated ASCII paths. Offsets count from the
start of the data block, which immediately follows the index and holds every
entry's bytes back to back in index order with no padding. The checksum is
the Adler-32 of the entry's bytes.
*/
package archive

import (
	"fmt"
	"hash/adler32"
	"math"
	"path"
	"strings"

	"github.com/worship-game/maupack/asseterr"
)

const (
	// Magic is the tag every archive starts with.
	Magic uint64 = 0x726100020455414D

	headerSize = 16
	recordSize = 1 + 8 + 8 + 4
)

// ResourceType tells the engine how to load an entry.
type ResourceType uint8

const (
	Indirect ResourceType = iota
	Texture
	Shader
	Font
	Sound
)

var typeNames = [...]string{
	Indirect: "indirect",
	Texture:  "texture",
	Shader:   "shader",
	Font:     "font",
	Sound:    "sound",
}

func (t ResourceType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("ResourceType(%d)", uint8(t))
}

// File extensions that are packed, and how
var extensions = map[string]ResourceType{
	"tex": Texture,
	"txt": Indirect,
	"sha": Shader,
	"mfo": Font,
	"vs":  Indirect,
	"fs":  Indirect,
	"mp3": Sound,
	"wav": Sound,
	"lvl": Indirect,
}

// TypeOf returns the resource type for a file name based on its extension.
// Names whose extension is not a resource extension are an error.
func TypeOf(name string) (ResourceType, error) {
	ext := strings.TrimPrefix(path.Ext(strings.ReplaceAll(name, `\`, "/")), ".")
	t, ok := extensions[ext]
	if !ok {
		return 0, asseterr.New(asseterr.ErrUnknownMapping, "archive: %q is not a resource extension", ext)
	}
	return t, nil
}

// Entry is one record of the archive index.
type Entry struct {
	Name     string
	Type     ResourceType
	Offset   uint64
	Size     uint64
	Checksum uint32
}

// Checksum returns the checksum stored for data.
func Checksum(data []byte) uint32 {
	return adler32.Checksum(data)
}

// Check that a name can be stored in the index as is
func checkName(name string) error {
	if name == "" {
		return asseterr.New(asseterr.ErrInputFormat, "archive: empty entry name")
	}
	if len(name) > math.MaxUint16 {
		return asseterr.New(asseterr.ErrEncodingLimit, "archive: entry name is %d bytes, limit is %d", len(name), math.MaxUint16)
	}
	for i := 0; i < len(name); i++ {
		if name[i] >= 0x80 {
			return asseterr.New(asseterr.ErrEncodingLimit, "archive: entry name %q is not ASCII", name)
		}
	}
	return nil
}
