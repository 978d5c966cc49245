package archive

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/worship-game/maupack/asseterr"
)

var (
	// ErrBadMagic is returned when the file does not start with Magic.
	ErrBadMagic = asseterr.New(asseterr.ErrInputFormat, "archive: invalid magic")

	// ErrChecksum is returned when an entry's data does not match the
	// checksum in the index.
	ErrChecksum = asseterr.New(asseterr.ErrInputFormat, "archive: checksum mismatch")

	errCorrupt = asseterr.New(asseterr.ErrInputFormat, "archive: index is corrupted")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errCorrupt
	}
	return err
}

// A Reader serves resources out of an archive.
type Reader struct {
	r       io.ReaderAt
	size    int64
	data    int64
	entries []Entry
	index   map[string]int
}

// A ReadCloser is a Reader that must be closed when no longer needed.
type ReadCloser struct {
	f *os.File
	Reader
}

// OpenReader opens the named archive.
func OpenReader(name string) (*ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, asseterr.New(asseterr.ErrIO, "archive: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, asseterr.New(asseterr.ErrIO, "archive: %w", err)
	}

	rc := &ReadCloser{f: f}
	if err := rc.init(f, info.Size()); err != nil {
		f.Close()
		return nil, err
	}
	return rc, nil
}

// Close closes the archive file.
func (rc *ReadCloser) Close() error {
	return rc.f.Close()
}

// NewReader reads the index of the archive held in r, which is size bytes
// long.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	ar := new(Reader)
	if err := ar.init(r, size); err != nil {
		return nil, err
	}
	return ar, nil
}

func (ar *Reader) init(r io.ReaderAt, size int64) error {
	ar.r = r
	ar.size = size
	ar.index = make(map[string]int)

	br := bufio.NewReader(io.NewSectionReader(r, 0, size))

	var tmp [headerSize]byte
	if err := readFull(br, tmp[:]); err != nil {
		return err
	}
	if binary.LittleEndian.Uint64(tmp[0:]) != Magic {
		return ErrBadMagic
	}
	count := binary.LittleEndian.Uint64(tmp[8:])

	pos := int64(headerSize)
	var rec [recordSize]byte
	for i := uint64(0); i < count; i++ {
		if err := readFull(br, tmp[:2]); err != nil {
			return err
		}
		name := make([]byte, binary.LittleEndian.Uint16(tmp[:2]))
		if err := readFull(br, name); err != nil {
			return err
		}
		if err := readFull(br, rec[:]); err != nil {
			return err
		}
		pos += int64(2 + len(name) + recordSize)

		e := Entry{
			Name:     string(name),
			Type:     ResourceType(rec[0]),
			Offset:   binary.LittleEndian.Uint64(rec[1:]),
			Size:     binary.LittleEndian.Uint64(rec[9:]),
			Checksum: binary.LittleEndian.Uint32(rec[17:]),
		}
		if int(e.Type) >= len(typeNames) {
			return fmt.Errorf("%w: entry %q has type %d", errCorrupt, e.Name, rec[0])
		}
		if _, ok := ar.index[e.Name]; ok {
			return fmt.Errorf("%w: duplicate entry %q", errCorrupt, e.Name)
		}
		ar.index[e.Name] = len(ar.entries)
		ar.entries = append(ar.entries, e)
	}
	ar.data = pos

	// Every entry has to lie inside the data block
	block := uint64(size - pos)
	for _, e := range ar.entries {
		if e.Offset > block || e.Size > block-e.Offset {
			return fmt.Errorf("%w: entry %q lies outside the data block", errCorrupt, e.Name)
		}
	}

	return nil
}

// Entries returns the index in archive order.
func (ar *Reader) Entries() []Entry {
	return append([]Entry(nil), ar.entries...)
}

// Lookup returns the index entry for name.
func (ar *Reader) Lookup(name string) (Entry, bool) {
	i, ok := ar.index[name]
	if !ok {
		return Entry{}, false
	}
	return ar.entries[i], true
}

func (ar *Reader) load(e Entry) ([]byte, error) {
	b := make([]byte, e.Size)
	if n, err := ar.r.ReadAt(b, ar.data+int64(e.Offset)); n < len(b) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, asseterr.New(asseterr.ErrIO, "archive: reading %s: %w", e.Name, err)
	}
	if Checksum(b) != e.Checksum {
		return nil, fmt.Errorf("%s: %w", e.Name, ErrChecksum)
	}
	return b, nil
}

// Load returns the verified contents of the named entry.
func (ar *Reader) Load(name string) ([]byte, error) {
	e, ok := ar.Lookup(name)
	if !ok {
		return nil, asseterr.New(asseterr.ErrUnknownMapping, "archive: resource %q not found", name)
	}
	return ar.load(e)
}

// Verify checks that entries are laid out back to back exactly filling the
// data block, and that every entry matches its checksum.
func (ar *Reader) Verify() error {
	var offset uint64
	for _, e := range ar.entries {
		if e.Offset != offset {
			return fmt.Errorf("%w: entry %q at offset %d, expected %d", errCorrupt, e.Name, e.Offset, offset)
		}
		offset += e.Size
	}
	if block := uint64(ar.size - ar.data); offset != block {
		return fmt.Errorf("%w: data block is %d bytes, index covers %d", errCorrupt, block, offset)
	}

	for _, e := range ar.entries {
		if _, err := ar.load(e); err != nil {
			return err
		}
	}

	return nil
}
