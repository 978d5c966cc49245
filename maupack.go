/*
Package maupack compiles game assets into MAU engine resources and packs them
into a single archive.

PNG images become textures, tile maps exported by the level editor become
levels, and a resource directory becomes an indexed archive. Every output is
written atomically: a failed step never leaves a partial file behind.
*/
package maupack

import "log"

// Compiler runs the asset transforms, logging progress to its logger and
// recording packed archives in an optional catalog.
type Compiler struct {
	catalog *Catalog
	logger  *log.Logger
}

// New returns a Compiler. catalog may be nil.
func New(catalog *Catalog, logger *log.Logger) *Compiler {
	return &Compiler{
		catalog: catalog,
		logger:  logger,
	}
}
