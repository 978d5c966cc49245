package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"github.com/worship-game/maupack"
	"github.com/worship-game/maupack/archive"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func openCatalog(file string) (*maupack.Catalog, error) {
	if file == "" {
		return nil, nil
	}
	return maupack.NewCatalog(file)
}

// Run fn with a compiler using the catalog named by the global flag, if any
func withCompiler(c *cli.Context, fn func(*maupack.Compiler) error) error {
	catalog, err := openCatalog(c.String("catalog"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if catalog != nil {
		defer catalog.Close()
	}

	if err := fn(maupack.New(catalog, newLogger(c))); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func openArchive(c *cli.Context) (*archive.ReadCloser, error) {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	ar, err := archive.OpenReader(c.Args().First())
	if err != nil {
		return nil, cli.NewExitError(err, 1)
	}
	return ar, nil
}

func main() {
	app := cli.NewApp()

	app.Name = "maupack"
	app.Usage = "MAU engine asset compiler"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "catalog",
			EnvVars: []string{"MAUPACK_CATALOG"},
			Usage:   "record packed archives in this database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "texture",
			Usage:     "Convert an image into a texture",
			ArgsUsage: "SOURCE DESTINATION",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "colors",
					Usage: "reduce the image to this many colors first",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				return withCompiler(c, func(m *maupack.Compiler) error {
					return m.Texture(c.Args().Get(0), c.Args().Get(1), c.Int("colors"))
				})
			},
		},
		{
			Name:      "level",
			Usage:     "Compile a tile map into a level",
			ArgsUsage: "SOURCE DESTINATION",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				return withCompiler(c, func(m *maupack.Compiler) error {
					return m.Level(c.Args().Get(0), c.Args().Get(1))
				})
			},
		},
		{
			Name:      "pack",
			Usage:     "Pack a resource directory into an archive",
			ArgsUsage: "DIRECTORY ARCHIVE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				return withCompiler(c, func(m *maupack.Compiler) error {
					_, err := m.Pack(c.Args().Get(0), c.Args().Get(1))
					return err
				})
			},
		},
		{
			Name:      "unpack",
			Usage:     "Verify an archive and extract it",
			ArgsUsage: "ARCHIVE DIRECTORY",
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				return withCompiler(c, func(m *maupack.Compiler) error {
					return m.Unpack(c.Args().Get(0), c.Args().Get(1))
				})
			},
		},
		{
			Name:      "list",
			Usage:     "List the index of an archive",
			ArgsUsage: "ARCHIVE",
			Action: func(c *cli.Context) error {
				ar, err := openArchive(c)
				if err != nil {
					return err
				}
				defer ar.Close()

				for _, e := range ar.Entries() {
					fmt.Printf("%08x %-8s %10s %s\n", e.Checksum, e.Type, humanize.Bytes(e.Size), e.Name)
				}

				return nil
			},
		},
		{
			Name:      "verify",
			Usage:     "Check every checksum in an archive",
			ArgsUsage: "ARCHIVE",
			Action: func(c *cli.Context) error {
				ar, err := openArchive(c)
				if err != nil {
					return err
				}
				defer ar.Close()

				if err := ar.Verify(); err != nil {
					return cli.NewExitError(err, 1)
				}

				newLogger(c).Printf("%s: %d resources ok\n", c.Args().First(), len(ar.Entries()))

				return nil
			},
		},
		{
			Name:  "build",
			Usage: "Convert textures, compile levels and pack the data directory",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "config",
					Aliases: []string{"c"},
					Value:   maupack.DefaultConfigFile,
					Usage:   "build configuration",
				},
				&cli.BoolFlag{
					Name:  "skip-textures",
					Usage: "do not convert images",
				},
				&cli.BoolFlag{
					Name:    "watch",
					Aliases: []string{"w"},
					Usage:   "rebuild whenever a source file changes",
				},
			},
			Action: func(c *cli.Context) error {
				cfg, err := maupack.LoadConfig(c.String("config"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				if c.Bool("skip-textures") {
					cfg.SkipTextures = true
				}

				file := c.String("catalog")
				if file == "" {
					file = cfg.Catalog
				}
				catalog, err := openCatalog(file)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				if catalog != nil {
					defer catalog.Close()
				}

				// Watching is pointless without seeing the build results
				logger := newLogger(c)
				if c.Bool("watch") {
					logger.SetOutput(os.Stderr)
				}

				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				m := maupack.New(catalog, logger)

				if c.Bool("watch") {
					err = m.Watch(ctx, cfg)
				} else {
					_, err = m.Build(ctx, cfg)
				}
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "find",
			Usage:     "Find which archives hold a resource",
			ArgsUsage: "NAME",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				if c.String("catalog") == "" {
					return cli.NewExitError("a catalog is required", 1)
				}

				catalog, err := maupack.NewCatalog(c.String("catalog"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer catalog.Close()

				locations, err := catalog.Find(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				for _, l := range locations {
					fmt.Printf("%s\t%s at %d (%s)\n", l.Archive, l.Entry.Type, l.Entry.Offset, humanize.Bytes(l.Entry.Size))
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
