package maupack

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/worship-game/maupack/archive"
	"github.com/worship-game/maupack/asseterr"
	"github.com/worship-game/maupack/internal/safefile"
	"github.com/worship-game/maupack/level"
	"github.com/worship-game/maupack/texture"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Texture converts the image at src into a texture resource at dst. If
// colors is positive the image is first reduced to that many colors.
func (c *Compiler) Texture(src, dst string, colors int) error {
	c.logger.Printf("converting texture %s...\n", src)

	f, err := os.Open(src)
	if err != nil {
		return asseterr.Wrap(asseterr.ErrIO, "texture", src, err)
	}
	defer f.Close()

	m, _, err := image.Decode(bufio.NewReader(f))
	if err != nil {
		return asseterr.Wrap(asseterr.ErrInputFormat, "texture", src, err)
	}

	enc := texture.Encoder{Colors: colors}
	if err := safefile.WriteFile(dst, 0644, func(w io.Writer) error {
		return enc.Encode(w, m)
	}); err != nil {
		return asseterr.Wrap(asseterr.ErrIO, "texture", dst, err)
	}

	return nil
}

// Level compiles the tile map at src into a level resource at dst.
func (c *Compiler) Level(src, dst string) error {
	c.logger.Printf("compiling %s to %s...\n", src, dst)

	data, err := os.ReadFile(src)
	if err != nil {
		return asseterr.Wrap(asseterr.ErrIO, "level", src, err)
	}

	m, err := level.Parse(data)
	if err != nil {
		return asseterr.Wrap(asseterr.ErrInputFormat, "level", src, err)
	}

	l, err := level.Compile(m)
	if err != nil {
		return asseterr.Wrap(asseterr.ErrInputFormat, "level", src, err)
	}

	b, err := l.MarshalBinary()
	if err != nil {
		return asseterr.Wrap(asseterr.ErrInputFormat, "level", src, err)
	}

	if err := safefile.Write(dst, b, 0644); err != nil {
		return asseterr.Wrap(asseterr.ErrIO, "level", dst, err)
	}

	c.logger.Printf("compiled %s: %dx%d tiles, %d objects\n", dst, l.Width, l.Height, len(l.Objects))

	return nil
}

// Pack writes every resource under dir into the archive dst and records the
// result in the catalog, if there is one.
func (c *Compiler) Pack(dir, dst string) ([]archive.Entry, error) {
	entries, err := archive.Pack(dir, dst)
	if err != nil {
		return nil, asseterr.Wrap(asseterr.ErrIO, "pack", dst, err)
	}

	var total uint64
	for _, e := range entries {
		c.logger.Printf("packed %s as %s (%s)\n", e.Name, e.Type, humanize.Bytes(e.Size))
		total += e.Size
	}
	c.logger.Printf("packed %d resources, %s, into %s\n", len(entries), humanize.Bytes(total), dst)

	if c.catalog != nil {
		abs, err := filepath.Abs(dst)
		if err != nil {
			return nil, asseterr.Wrap(asseterr.ErrIO, "catalog", dst, err)
		}
		if err := c.catalog.Record(abs, entries); err != nil {
			return nil, asseterr.Wrap(asseterr.ErrIO, "catalog", dst, err)
		}
	}

	return entries, nil
}

// Unpack verifies the archive src and extracts every entry below dir.
func (c *Compiler) Unpack(src, dir string) error {
	ar, err := archive.OpenReader(src)
	if err != nil {
		return asseterr.Wrap(asseterr.ErrIO, "unpack", src, err)
	}
	defer ar.Close()

	if err := ar.Verify(); err != nil {
		return asseterr.Wrap(asseterr.ErrInputFormat, "unpack", src, err)
	}

	for _, e := range ar.Entries() {
		name := filepath.FromSlash(e.Name)
		if !filepath.IsLocal(name) {
			return asseterr.Wrap(asseterr.ErrInputFormat, "unpack", src, fmt.Errorf("entry %q escapes the destination", e.Name))
		}

		b, err := ar.Load(e.Name)
		if err != nil {
			return asseterr.Wrap(asseterr.ErrInputFormat, "unpack", src, err)
		}

		dst := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return asseterr.Wrap(asseterr.ErrIO, "unpack", dst, err)
		}
		if err := safefile.Write(dst, b, 0644); err != nil {
			return asseterr.Wrap(asseterr.ErrIO, "unpack", dst, err)
		}

		c.logger.Printf("extracted %s\n", dst)
	}

	return nil
}
