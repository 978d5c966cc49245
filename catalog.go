package maupack

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/worship-game/maupack/archive"
)

// Catalog is a database of packed archives and the resources inside them.
type Catalog struct {
	db *sql.DB
}

// Location is where a resource was packed.
type Location struct {
	Archive string
	Entry   archive.Entry
}

// NewCatalog opens the catalog database in file, creating it if needed.
func NewCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS archive (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS entry (archive_id INTEGER NOT NULL, name TEXT NOT NULL, type INTEGER NOT NULL, data_offset INTEGER NOT NULL, data_size INTEGER NOT NULL, checksum INTEGER NOT NULL, UNIQUE(archive_id, name), FOREIGN KEY(archive_id) REFERENCES archive(id))"); err != nil {
		db.Close()
		return nil, err
	}

	return &Catalog{
		db: db,
	}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Record replaces everything known about the archive at path with entries.
func (c *Catalog) Record(path string, entries []archive.Entry) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id int64
	switch err := tx.QueryRow("SELECT id FROM archive WHERE path = ?", path).Scan(&id); err {
	case sql.ErrNoRows:
		result, err := tx.Exec("INSERT INTO archive (path) VALUES (?)", path)
		if err != nil {
			return err
		}
		if id, err = result.LastInsertId(); err != nil {
			return err
		}
	case nil:
		if _, err := tx.Exec("DELETE FROM entry WHERE archive_id = ?", id); err != nil {
			return err
		}
	default:
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO entry (archive_id, name, type, data_offset, data_size, checksum) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(id, e.Name, int64(e.Type), int64(e.Offset), int64(e.Size), int64(e.Checksum)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func scanEntries(rows *sql.Rows, fn func(archive.Entry, string)) error {
	defer rows.Close()
	for rows.Next() {
		var path, name string
		var typ, offset, size, checksum int64
		if err := rows.Scan(&path, &name, &typ, &offset, &size, &checksum); err != nil {
			return err
		}
		fn(archive.Entry{
			Name:     name,
			Type:     archive.ResourceType(typ),
			Offset:   uint64(offset),
			Size:     uint64(size),
			Checksum: uint32(checksum),
		}, path)
	}
	return rows.Err()
}

// Entries returns the recorded index of the archive at path, in archive
// order.
func (c *Catalog) Entries(path string) ([]archive.Entry, error) {
	rows, err := c.db.Query("SELECT a.path, e.name, e.type, e.data_offset, e.data_size, e.checksum FROM entry AS e JOIN archive AS a ON e.archive_id = a.id WHERE a.path = ? ORDER BY e.rowid", path)
	if err != nil {
		return nil, err
	}

	var entries []archive.Entry
	if err := scanEntries(rows, func(e archive.Entry, _ string) {
		entries = append(entries, e)
	}); err != nil {
		return nil, err
	}
	return entries, nil
}

// Find returns every archive holding a resource called name.
func (c *Catalog) Find(name string) ([]Location, error) {
	rows, err := c.db.Query("SELECT a.path, e.name, e.type, e.data_offset, e.data_size, e.checksum FROM entry AS e JOIN archive AS a ON e.archive_id = a.id WHERE e.name = ? ORDER BY a.path", name)
	if err != nil {
		return nil, err
	}

	var locations []Location
	if err := scanEntries(rows, func(e archive.Entry, path string) {
		locations = append(locations, Location{Archive: path, Entry: e})
	}); err != nil {
		return nil, err
	}
	return locations, nil
}
