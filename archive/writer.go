package archive

import (
	"encoding/binary"
	"hash"
	"hash/adler32"
	"io"
	"os"

	"github.com/worship-game/maupack/asseterr"
	"github.com/worship-game/maupack/internal/safefile"
)

// Read a file once, returning its size and checksum
func measure(f File) (uint64, uint32, error) {
	rc, err := f.Open()
	if err != nil {
		return 0, 0, asseterr.New(asseterr.ErrIO, "archive: reading %s: %w", f.Name, err)
	}
	defer rc.Close()

	h := adler32.New()
	n, err := io.Copy(h, rc)
	if err != nil {
		return 0, 0, asseterr.New(asseterr.ErrIO, "archive: reading %s: %w", f.Name, err)
	}

	return uint64(n), h.Sum32(), nil
}

// Plan builds the index for files in the order given. Each file is read once
// to find its size and checksum, and offsets are the running total of the
// sizes before it.
func Plan(files []File) ([]Entry, error) {
	entries := make([]Entry, 0, len(files))
	seen := make(map[string]struct{}, len(files))

	var offset uint64
	for _, f := range files {
		if err := checkName(f.Name); err != nil {
			return nil, err
		}
		if _, ok := seen[f.Name]; ok {
			return nil, asseterr.New(asseterr.ErrInputFormat, "archive: duplicate entry %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		size, sum, err := measure(f)
		if err != nil {
			return nil, err
		}

		entries = append(entries, Entry{
			Name:     f.Name,
			Type:     f.Type,
			Offset:   offset,
			Size:     size,
			Checksum: sum,
		})
		offset += size
	}

	return entries, nil
}

func writeIndex(w io.Writer, entries []Entry) error {
	var tmp [headerSize]byte
	binary.LittleEndian.PutUint64(tmp[0:], Magic)
	binary.LittleEndian.PutUint64(tmp[8:], uint64(len(entries)))
	if _, err := w.Write(tmp[:]); err != nil {
		return err
	}

	var rec [recordSize]byte
	for _, e := range entries {
		binary.LittleEndian.PutUint16(tmp[:2], uint16(len(e.Name)))
		if _, err := w.Write(tmp[:2]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, e.Name); err != nil {
			return err
		}

		rec[0] = byte(e.Type)
		binary.LittleEndian.PutUint64(rec[1:], e.Offset)
		binary.LittleEndian.PutUint64(rec[9:], e.Size)
		binary.LittleEndian.PutUint32(rec[17:], e.Checksum)
		if _, err := w.Write(rec[:]); err != nil {
			return err
		}
	}

	return nil
}

type countingHash struct {
	hash.Hash32
	n uint64
}

func (c *countingHash) Write(p []byte) (int, error) {
	c.n += uint64(len(p))
	return c.Hash32.Write(p)
}

func writeData(w io.Writer, f File, e Entry) error {
	rc, err := f.Open()
	if err != nil {
		return asseterr.New(asseterr.ErrIO, "archive: reading %s: %w", f.Name, err)
	}
	defer rc.Close()

	h := &countingHash{Hash32: adler32.New()}
	if _, err := io.Copy(io.MultiWriter(w, h), io.LimitReader(rc, int64(e.Size)+1)); err != nil {
		return asseterr.New(asseterr.ErrIO, "archive: copying %s: %w", f.Name, err)
	}
	if h.n != e.Size || h.Sum32() != e.Checksum {
		return asseterr.New(asseterr.ErrIO, "archive: %s changed while packing", f.Name)
	}

	return nil
}

// Write plans files and writes the complete archive to w: the header, the
// index, and then the data of every file in index order. It returns the
// index that was written.
func Write(w io.Writer, files []File) ([]Entry, error) {
	entries, err := Plan(files)
	if err != nil {
		return nil, err
	}

	if err := writeIndex(w, entries); err != nil {
		return nil, asseterr.New(asseterr.ErrIO, "archive: writing index: %w", err)
	}

	for i, f := range files {
		if err := writeData(w, f, entries[i]); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

// Pack scans root and writes the archive of every resource found to dst.
// dst is only replaced once the whole archive has been written.
func Pack(root, dst string) ([]Entry, error) {
	files, err := Scan(root)
	if err != nil {
		return nil, asseterr.New(asseterr.ErrIO, "archive: scanning %s: %w", root, err)
	}

	entries, err := WriteFile(dst, files, 0644)
	if err != nil {
		if asseterr.KindOf(err) == nil {
			err = asseterr.New(asseterr.ErrIO, "archive: writing %s: %w", dst, err)
		}
		return nil, err
	}

	return entries, nil
}

// WriteFile writes files as an archive to dst atomically.
func WriteFile(dst string, files []File, perm os.FileMode) ([]Entry, error) {
	var entries []Entry
	err := safefile.WriteFile(dst, perm, func(w io.Writer) error {
		var err error
		entries, err = Write(w, files)
		return err
	})
	return entries, err
}
