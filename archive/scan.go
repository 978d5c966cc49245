package archive

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is a resource queued for packing.
type File struct {
	Name string
	Type ResourceType
	Open func() (io.ReadCloser, error)
}

// DiskFile returns a File that reads its contents from path.
func DiskFile(name, path string, t ResourceType) File {
	return File{
		Name: name,
		Type: t,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// BytesFile returns a File holding b.
func BytesFile(name string, t ResourceType, b []byte) File {
	return File{
		Name: name,
		Type: t,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		},
	}
}

// Scan walks root and returns every regular file with a resource extension,
// sorted by name. Names are relative to root and slash separated. Hidden
// files and directories are skipped.
func Scan(root string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(file string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Ignore any hidden files or directories, this includes partially written output
		if file != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Ignore anything that isn't a normal file
		if !d.Type().IsRegular() {
			return nil
		}

		t, err := TypeOf(d.Name())
		if err != nil {
			return nil
		}

		rel, err := filepath.Rel(root, file)
		if err != nil {
			return err
		}
		name := strings.ReplaceAll(filepath.ToSlash(rel), `\`, "/")

		files = append(files, DiskFile(name, file, t))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	return files, nil
}
