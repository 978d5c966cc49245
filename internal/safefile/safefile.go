// Package safefile writes destination files so that a failed or interrupted
// write never leaves a partial file under the final name.
package safefile

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
)

// WriteFile calls write with a buffered writer backed by a temporary file in
// the same directory as name, then syncs and renames it over name. If write
// or any later step fails the temporary file is removed and name is left
// untouched.
func WriteFile(name string, perm os.FileMode, write func(io.Writer) error) (err error) {
	dir, base := filepath.Split(name)
	if dir == "" {
		dir = "."
	}

	f, err := os.CreateTemp(dir, "."+base+".tmp*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	w := bufio.NewWriter(f)
	if err = write(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Chmod(perm); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, name)
}

// Write stores b in name atomically.
func Write(name string, b []byte, perm os.FileMode) error {
	return WriteFile(name, perm, func(w io.Writer) error {
		_, err := w.Write(b)
		return err
	})
}
