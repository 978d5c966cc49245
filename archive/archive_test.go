package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/worship-game/maupack/asseterr"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, data := range files {
		file := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(file), 0755))
		require.NoError(t, os.WriteFile(file, []byte(data), 0644))
	}
	return root
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, uint32(0x11e60398), Checksum([]byte("Wikipedia")))
	assert.Equal(t, uint32(1), Checksum(nil))
}

func TestTypeOf(t *testing.T) {
	tables := []struct {
		name string
		want ResourceType
	}{
		{"wall.tex", Texture},
		{"readme.txt", Indirect},
		{"bloom.sha", Shader},
		{"menu.mfo", Font},
		{"basic.vs", Indirect},
		{"basic.fs", Indirect},
		{"music.mp3", Sound},
		{"shot.wav", Sound},
		{"levels/e1m1.lvl", Indirect},
		{`levels\e1m2.lvl`, Indirect},
	}
	for _, table := range tables {
		got, err := TypeOf(table.name)
		require.NoError(t, err, table.name)
		assert.Equal(t, table.want, got, table.name)
	}

	for _, name := range []string{"wall.png", "map.json", "noext", "wall.TEX", "dir.tex/file"} {
		_, err := TypeOf(name)
		assert.True(t, errors.Is(err, asseterr.ErrUnknownMapping), name)
	}
}

func TestWriteLayout(t *testing.T) {
	b := new(bytes.Buffer)
	entries, err := Write(b, []File{
		BytesFile("b.txt", Indirect, []byte("hello")),
		BytesFile("a.tex", Texture, []byte{1, 2}),
	})
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{Name: "b.txt", Type: Indirect, Offset: 0, Size: 5, Checksum: Checksum([]byte("hello"))},
		{Name: "a.tex", Type: Texture, Offset: 5, Size: 2, Checksum: Checksum([]byte{1, 2})},
	}, entries)

	want := new(bytes.Buffer)
	le := binary.LittleEndian
	binary.Write(want, le, uint64(0x726100020455414D))
	binary.Write(want, le, uint64(2))
	binary.Write(want, le, uint16(5))
	want.WriteString("b.txt")
	binary.Write(want, le, uint8(0))
	binary.Write(want, le, uint64(0))
	binary.Write(want, le, uint64(5))
	binary.Write(want, le, Checksum([]byte("hello")))
	binary.Write(want, le, uint16(5))
	want.WriteString("a.tex")
	binary.Write(want, le, uint8(1))
	binary.Write(want, le, uint64(5))
	binary.Write(want, le, uint64(2))
	binary.Write(want, le, Checksum([]byte{1, 2}))
	want.WriteString("hello")
	want.Write([]byte{1, 2})

	assert.Equal(t, want.Bytes(), b.Bytes())
	assert.Equal(t, []byte{0x4d, 0x41, 0x55, 0x04, 0x02, 0x00, 0x61, 0x72}, b.Bytes()[:8])
}

func TestPlanOffsets(t *testing.T) {
	var files []File
	for i, size := range []int{0, 7, 1, 300, 0, 42} {
		files = append(files, BytesFile(string(rune('a'+i))+".txt", Indirect, bytes.Repeat([]byte{byte(i)}, size)))
	}

	entries, err := Plan(files)
	require.NoError(t, err)

	var sum uint64
	for _, e := range entries {
		assert.Equal(t, sum, e.Offset, e.Name)
		sum += e.Size
	}
	assert.Equal(t, uint64(350), sum)

	b := new(bytes.Buffer)
	_, err = Write(b, files)
	require.NoError(t, err)

	ar, err := NewReader(bytes.NewReader(b.Bytes()), int64(b.Len()))
	require.NoError(t, err)
	assert.Equal(t, int64(sum), int64(b.Len())-ar.data)
	assert.NoError(t, ar.Verify())
}

func TestPlanNameLimits(t *testing.T) {
	tables := []struct {
		name string
		kind error
	}{
		{strings.Repeat("a", 65536), asseterr.ErrEncodingLimit},
		{"textures/müll.tex", asseterr.ErrEncodingLimit},
		{"", asseterr.ErrInputFormat},
	}
	for _, table := range tables {
		_, err := Plan([]File{BytesFile(table.name, Indirect, nil)})
		assert.Equal(t, table.kind, asseterr.KindOf(err))
	}

	_, err := Plan([]File{BytesFile(strings.Repeat("a", 65535), Indirect, nil)})
	assert.NoError(t, err)

	_, err = Plan([]File{
		BytesFile("x.txt", Indirect, nil),
		BytesFile("x.txt", Indirect, nil),
	})
	assert.True(t, errors.Is(err, asseterr.ErrInputFormat))
}

func TestScan(t *testing.T) {
	root := writeTree(t, map[string]string{
		"textures/wall.tex":   "wall",
		"textures/wall.png":   "png",
		"shaders/basic.vs":    "vs",
		"shaders/basic.fs":    "fs",
		"e1m1.lvl":            "level",
		"notes.md":            "skip",
		".hidden/secret.txt":  "skip",
		"textures/.wall.tex1": "skip",
		"sounds/shot.wav":     "wav",
	})

	files, err := Scan(root)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"e1m1.lvl",
		"shaders/basic.fs",
		"shaders/basic.vs",
		"sounds/shot.wav",
		"textures/wall.tex",
	}, names)
	assert.Equal(t, Sound, files[3].Type)
	assert.Equal(t, Texture, files[4].Type)
}

func TestPackAndLoad(t *testing.T) {
	root := writeTree(t, map[string]string{
		"textures/wall.tex": "wall pixels",
		"readme.txt":        "read this",
		"e1m1.lvl":          "",
	})
	dst := filepath.Join(t.TempDir(), "data.mau")

	entries, err := Pack(root, dst)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	ar, err := OpenReader(dst)
	require.NoError(t, err)
	defer ar.Close()

	assert.Equal(t, entries, ar.Entries())
	require.NoError(t, ar.Verify())

	b, err := ar.Load("textures/wall.tex")
	require.NoError(t, err)
	assert.Equal(t, "wall pixels", string(b))

	b, err = ar.Load("e1m1.lvl")
	require.NoError(t, err)
	assert.Empty(t, b)

	e, ok := ar.Lookup("readme.txt")
	require.True(t, ok)
	assert.Equal(t, Indirect, e.Type)

	_, err = ar.Load("missing.txt")
	assert.True(t, errors.Is(err, asseterr.ErrUnknownMapping))
}

func TestPackDeterministic(t *testing.T) {
	root := writeTree(t, map[string]string{
		"z.txt":     "last",
		"a/b.tex":   "first",
		"a/c/d.wav": "middle",
	})
	dir := t.TempDir()

	_, err := Pack(root, filepath.Join(dir, "one.mau"))
	require.NoError(t, err)
	_, err = Pack(root, filepath.Join(dir, "two.mau"))
	require.NoError(t, err)

	one, err := os.ReadFile(filepath.Join(dir, "one.mau"))
	require.NoError(t, err)
	two, err := os.ReadFile(filepath.Join(dir, "two.mau"))
	require.NoError(t, err)
	assert.Equal(t, one, two)
}

func TestPackUnreadableSource(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "data.mau")

	_, err := Pack(filepath.Join(t.TempDir(), "missing"), dst)
	assert.True(t, errors.Is(err, asseterr.ErrIO))

	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFileFailureLeavesNoArchive(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "data.mau")
	files := []File{
		BytesFile("ok.txt", Indirect, []byte("fine")),
		{Name: "broken.txt", Type: Indirect, Open: func() (io.ReadCloser, error) { return nil, os.ErrPermission }},
	}

	_, err := WriteFile(dst, files, 0644)
	assert.True(t, errors.Is(err, asseterr.ErrIO))
	assert.True(t, errors.Is(err, os.ErrPermission))

	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err))
}

func TestCorruption(t *testing.T) {
	b := new(bytes.Buffer)
	_, err := Write(b, []File{
		BytesFile("a.txt", Indirect, []byte("alpha")),
		BytesFile("b.txt", Indirect, []byte("bravo")),
	})
	require.NoError(t, err)
	data := b.Bytes()

	// Flip the last byte, which belongs to b.txt
	bad := append([]byte(nil), data...)
	bad[len(bad)-1] ^= 0xff

	ar, err := NewReader(bytes.NewReader(bad), int64(len(bad)))
	require.NoError(t, err)

	_, err = ar.Load("b.txt")
	assert.True(t, errors.Is(err, ErrChecksum))
	assert.True(t, errors.Is(ar.Verify(), ErrChecksum))

	a, err := ar.Load("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(a))
	assert.Equal(t, Checksum([]byte("bravo")), mustLookup(t, ar, "b.txt").Checksum)
	assert.NotEqual(t, Checksum(bad[len(bad)-5:]), mustLookup(t, ar, "b.txt").Checksum)
}

func mustLookup(t *testing.T, ar *Reader, name string) Entry {
	t.Helper()
	e, ok := ar.Lookup(name)
	require.True(t, ok)
	return e
}

func TestNewReaderErrors(t *testing.T) {
	b := new(bytes.Buffer)
	_, err := Write(b, []File{BytesFile("a.txt", Indirect, []byte("alpha"))})
	require.NoError(t, err)
	data := b.Bytes()

	badMagic := append([]byte(nil), data...)
	badMagic[0] = 0

	tables := []struct {
		name string
		data []byte
		err  error
	}{
		{"magic", badMagic, ErrBadMagic},
		{"header", data[:8], errCorrupt},
		{"index", data[:20], errCorrupt},
		{"data", data[:len(data)-1], errCorrupt},
	}
	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := NewReader(bytes.NewReader(table.data), int64(len(table.data)))
			assert.True(t, errors.Is(err, table.err))
			assert.True(t, errors.Is(err, asseterr.ErrInputFormat))
		})
	}
}

func TestVerifyTrailingData(t *testing.T) {
	b := new(bytes.Buffer)
	_, err := Write(b, []File{BytesFile("a.txt", Indirect, []byte("alpha"))})
	require.NoError(t, err)
	data := append(b.Bytes(), 0)

	ar, err := NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.True(t, errors.Is(ar.Verify(), errCorrupt))
}
