/*
Package texture implements the MAU texture resource decoder and encoder.

A texture is written as an 8 byte tag ("MAU", 0x04, 0x02, "tex"), the width
and height as little-endian 32-bit unsigned integers, and then one 4 byte
pixel per texel: 8-bit red, green, blue and non-premultiplied alpha, row by
row from the top. Sources without an alpha channel are written fully opaque.
There is no compression or padding, so a w by h texture is always exactly
16+w*h*4 bytes long.

The package registers itself with the image package under the name "mautex"
so image.Decode recognises compiled textures.
*/
package texture

import "image"

const (
	headerSize    = 16
	bytesPerPixel = 4
)

// Magic is the tag every texture resource starts with.
var Magic = [8]byte{'M', 'A', 'U', 0x04, 0x02, 't', 'e', 'x'}

// Size returns the encoded length of a width by height texture.
func Size(width, height uint32) uint64 {
	return headerSize + uint64(width)*uint64(height)*bytesPerPixel
}

func init() {
	image.RegisterFormat("mautex", string(Magic[:]), Decode, DecodeConfig)
}
