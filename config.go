package maupack

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/worship-game/maupack/asseterr"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the build configuration read when none is given.
const DefaultConfigFile = "assets.yaml"

// Config describes a full asset build.
type Config struct {
	// Data is the resource tree. Textures are written next to their
	// images, levels into its root, and the whole tree is packed.
	Data string `yaml:"data"`

	// Levels holds the tile-map sources.
	Levels string `yaml:"levels"`

	// Output is the archive to write.
	Output string `yaml:"output"`

	// Catalog is an optional catalog database recording each pack.
	Catalog string `yaml:"catalog"`

	TextureColors int  `yaml:"texture_colors"`
	Workers       int  `yaml:"workers"`
	SkipTextures  bool `yaml:"skip_textures"`
}

// DefaultConfig returns the configuration used for any field that a
// configuration file leaves out.
func DefaultConfig() *Config {
	return &Config{
		Data:   "data",
		Levels: filepath.Join("worship-tiled", "levels-staging"),
		Output: filepath.Join("build", "worship", "data.mau"),
	}
}

// LoadConfig reads a YAML build configuration. Relative paths are resolved
// against the directory containing file.
func LoadConfig(file string) (*Config, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, asseterr.Wrap(asseterr.ErrIO, "config", file, err)
	}

	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, asseterr.Wrap(asseterr.ErrInputFormat, "config", file, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, asseterr.Wrap(asseterr.ErrInputFormat, "config", file, err)
	}

	cfg.resolve(filepath.Dir(file))

	return cfg, nil
}

func (cfg *Config) validate() error {
	switch {
	case cfg.Data == "":
		return asseterr.New(asseterr.ErrInputFormat, "data directory is required")
	case cfg.Levels == "":
		return asseterr.New(asseterr.ErrInputFormat, "levels directory is required")
	case cfg.Output == "":
		return asseterr.New(asseterr.ErrInputFormat, "output archive is required")
	case cfg.TextureColors < 0:
		return asseterr.New(asseterr.ErrInputFormat, "texture_colors cannot be negative")
	case cfg.Workers < 0:
		return asseterr.New(asseterr.ErrInputFormat, "workers cannot be negative")
	}
	return nil
}

func (cfg *Config) resolve(base string) {
	for _, p := range []*string{&cfg.Data, &cfg.Levels, &cfg.Output, &cfg.Catalog} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}
