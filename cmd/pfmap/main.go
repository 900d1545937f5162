// pfmap is a CLI utility for inspecting, converting and generating pfmap
// terrain maps.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/pfmap/internal/config"
	"github.com/Faultbox/pfmap/internal/engine/renderer"
	"github.com/Faultbox/pfmap/internal/engine/terrain"
	"github.com/Faultbox/pfmap/internal/logger"
	"github.com/Faultbox/pfmap/internal/mapgen"
	"github.com/Faultbox/pfmap/internal/world"
	"github.com/Faultbox/pfmap/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "check":
		cmdCheck(args)
	case "dump":
		cmdDump(args)
	case "size":
		cmdSize(args)
	case "gen", "generate":
		cmdGen(args)
	case "tile":
		cmdTile(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pfmap - terrain map utility

Usage:
  pfmap <command> [options]

Commands:
  info [-mat file] <map.pfmap>       Load a map and show its layout
  check <map.pfmap>                  Validate header and tile body
  dump [-mat file] <map.pfmap>       Load a map and write it back to stdout
  size <map.pfmap>                   Show the arena size a map needs
  gen [options] <dir> <name>         Generate <name>.pfmap and <name>.pfmat
  tile <token>...                    Decode tile tokens
  config [-o file]                   Write the default config (user config dir if -o is unset)

Examples:
  pfmap info assets/maps/plain/plain.pfmap
  pfmap check -v broken.pfmap
  pfmap gen -seed 7 -rows 2 -cols 2 ./out hills
  pfmap tile 011000 152011`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func initLogging(verbose bool) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fatalf("%v", err)
	}
}

// loadConfig returns the defaults, or the defaults merged with path.
func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		fatalf("%v", err)
	}
	return cfg
}

// splitMapPath returns the directory and file name of a map path, and the
// material file name that goes with it unless mat overrides it.
func splitMapPath(path, mat string) (dir, name, matName string) {
	dir, name = filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if mat == "" {
		mat = strings.TrimSuffix(name, filepath.Ext(name)) + ".pfmat"
	}
	return dir, name, mat
}

func loadMap(cfg *config.Config, path, mat string) *world.Map {
	dir, name, matName := splitMapPath(path, mat)
	loader := world.NewLoader()
	loader.ChunkMaterials = cfg.Map.ChunkMaterials
	m, err := loader.LoadFile(dir, name, matName)
	if err != nil {
		logger.Error("failed to load map", zap.String("path", path), zap.Error(err))
		fatalf("%v", err)
	}
	return m
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	mat := fs.String("mat", "", "Material file name (default: <map>.pfmat)")
	cfgPath := fs.String("config", "", "Config file with chunk material overrides")
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pfmap info [-mat file] [-config file] <map.pfmap>")
		os.Exit(1)
	}
	initLogging(*verbose)
	defer logger.Sync()

	m := loadMap(loadConfig(*cfgPath), fs.Arg(0), *mat)

	var types [formats.NumTileTypes]int
	pathable := 0
	for r := 0; r < m.TileHeight(); r++ {
		for c := 0; c < m.TileWidth(); c++ {
			t, err := m.TileAt(r, c)
			if err != nil {
				fatalf("%v", err)
			}
			if t.Type.Valid() {
				types[t.Type]++
			}
			if t.Pathable {
				pathable++
			}
		}
	}

	total := m.TileWidth() * m.TileHeight()
	b := m.Bounds()
	fmt.Printf("Map:       %s\n", fs.Arg(0))
	fmt.Printf("Chunks:    %d x %d\n", m.Height(), m.Width())
	fmt.Printf("Tiles:     %d x %d\n", m.TileHeight(), m.TileWidth())
	fmt.Printf("Materials: %d\n", m.NumMaterials())
	fmt.Printf("Arena:     %.2f MB\n", float64(m.Arena().Len())/(1024*1024))
	fmt.Printf("Bounds:    x [%.0f, %.0f]  z [%.0f, %.0f]\n", b.Min.X(), b.Max.X(), b.Min.Z(), b.Max.Z())
	fmt.Printf("Pathable:  %d/%d (%.1f%%)\n", pathable, total, 100*float64(pathable)/float64(total))
	fmt.Println()
	fmt.Println("Tiles by type:")
	for i, n := range types {
		if n > 0 {
			fmt.Printf("  %-16s %d\n", formats.TileType(i), n)
		}
	}
}

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Report every tile type in use")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pfmap check <map.pfmap>")
		os.Exit(1)
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}
	defer f.Close()

	tr := formats.NewTileReader(bufio.NewReader(f))
	header, err := tr.ReadHeader()
	if err != nil {
		fatalf("%s: %v", fs.Arg(0), err)
	}

	used := make(map[formats.TileType]int)
	tiles := make([]formats.Tile, formats.TilesPerChunk)
	for i := 0; i < header.NumChunks(); i++ {
		if err := tr.ReadChunk(tiles); err != nil {
			fatalf("%s: chunk %d: %v", fs.Arg(0), i, err)
		}
		for j, t := range tiles {
			if t.TopMaterial >= header.NumMaterials || t.SideMaterial >= header.NumMaterials {
				fatalf("%s: chunk %d tile %d: material %d/%d exceeds num_materials %d",
					fs.Arg(0), i, j, t.TopMaterial, t.SideMaterial, header.NumMaterials)
			}
			if t.Type.Valid() {
				used[t.Type]++
			}
		}
	}

	fmt.Printf("%s: OK (%d chunks, %d lines)\n", fs.Arg(0), header.NumChunks(), tr.Line())
	if *verbose {
		for i := 0; i < formats.NumTileTypes; i++ {
			if n := used[formats.TileType(i)]; n > 0 {
				fmt.Printf("  %-16s %d\n", formats.TileType(i), n)
			}
		}
	}
}

func cmdDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	mat := fs.String("mat", "", "Material file name (default: <map>.pfmat)")
	cfgPath := fs.String("config", "", "Config file with chunk material overrides")
	body := fs.Bool("body", false, "Write only the tile body, without the header")
	verbose := fs.Bool("v", false, "Verbose logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pfmap dump [-mat file] [-config file] [-body] <map.pfmap>")
		os.Exit(1)
	}
	initLogging(*verbose)
	defer logger.Sync()

	m := loadMap(loadConfig(*cfgPath), fs.Arg(0), *mat)

	w := bufio.NewWriter(os.Stdout)
	dump := world.DumpMapFile
	if *body {
		dump = world.DumpMap
	}
	if err := dump(w, m); err != nil {
		fatalf("%v", err)
	}
	if err := w.Flush(); err != nil {
		fatalf("%v", err)
	}
}

func cmdSize(args []string) {
	fs := flag.NewFlagSet("size", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pfmap size <map.pfmap>")
		os.Exit(1)
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}
	defer f.Close()

	header, err := formats.NewTileReader(f).ReadHeader()
	if err != nil {
		fatalf("%s: %v", fs.Arg(0), err)
	}

	n := uint64(header.NumChunks())
	geom := world.ChunkGeometrySize(header.NumMaterials)
	fmt.Printf("Map record:     %d bytes\n", world.MapRecordSize)
	fmt.Printf("Chunk records:  %d x %d bytes\n", n, world.ChunkRecordSize)
	fmt.Printf("Geometry:       %d x %d bytes (%d vertices of %d bytes, %d materials of %d bytes)\n",
		n, geom, formats.TilesPerChunk*terrain.VertsPerTile, renderer.VertexSize,
		header.NumMaterials, renderer.MaterialRecordSize)
	fmt.Printf("Total:          %d bytes\n", world.ComputeRequiredSize(header))
}

func cmdGen(args []string) {
	// -config must be known before the other flags so its values become
	// their defaults.
	def := mapgen.ParamsFromConfig(loadConfig(configArg(args)).Generator)

	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	fs.String("config", "", "Config file whose generator section sets the defaults")
	seed := fs.Int64("seed", def.Seed, "Noise seed")
	rows := fs.Int("rows", def.Rows, "Chunk rows")
	cols := fs.Int("cols", def.Cols, "Chunk columns")
	height := fs.Int("height", def.MaxHeight, "Maximum base height (0-8)")
	mats := fs.Int("mats", def.NumMaterials, "Number of materials (1-10)")
	scale := fs.Float64("scale", float64(def.Scale), "Tiles per noise unit")
	octaves := fs.Int("octaves", def.Octaves, "Noise octaves")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: pfmap gen [options] <dir> <name>")
		os.Exit(1)
	}
	dir, name := fs.Arg(0), fs.Arg(1)

	p := def
	p.Seed = *seed
	p.Rows = *rows
	p.Cols = *cols
	p.MaxHeight = *height
	p.NumMaterials = *mats
	p.Scale = float32(*scale)
	p.Octaves = *octaves

	g, err := mapgen.Generate(p)
	if err != nil {
		fatalf("%v", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		fatalf("creating directory: %v", err)
	}

	mapPath := filepath.Join(dir, name+".pfmap")
	matPath := filepath.Join(dir, name+".pfmat")
	if err := writeFile(mapPath, func(w *bufio.Writer) error {
		_, err := g.WriteTo(w)
		return err
	}); err != nil {
		fatalf("%v", err)
	}
	if err := writeFile(matPath, func(w *bufio.Writer) error {
		return formats.WritePFMat(w, mapgen.DefaultMaterials(p.NumMaterials))
	}); err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Generated: %s (%dx%d chunks)\n", mapPath, p.Rows, p.Cols)
	fmt.Printf("Generated: %s (%d materials)\n", matPath, p.NumMaterials)
}

// configArg finds a -config value in args without parsing the rest.
func configArg(args []string) string {
	for i, a := range args {
		switch {
		case a == "-config" || a == "--config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(a, "-config="):
			return strings.TrimPrefix(a, "-config=")
		case strings.HasPrefix(a, "--config="):
			return strings.TrimPrefix(a, "--config=")
		}
	}
	return ""
}

func writeFile(path string, write func(*bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func cmdTile(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: pfmap tile <token>...")
		os.Exit(1)
	}

	failed := false
	for _, tok := range args {
		t, err := formats.ParseTile(tok)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", tok, err)
			failed = true
			continue
		}

		raised := terrain.RaisedCorners(t.Type)
		var corners []string
		for c := terrain.CornerNW; c < terrain.NumCorners; c++ {
			mark := ""
			if raised[c] {
				mark = "*"
			}
			corners = append(corners, fmt.Sprintf("%s=%g%s", c, terrain.CornerHeight(t, c), mark))
		}

		fmt.Printf("%s  %-16s pathable=%-5t base=%d ramp=%d top=%d side=%d  %s\n",
			tok, t.Type, t.Pathable, t.BaseHeight, t.RampHeight, t.TopMaterial, t.SideMaterial,
			strings.Join(corners, " "))
	}
	if failed {
		os.Exit(1)
	}
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	out := fs.String("o", "", "Output path")
	fs.Parse(args)

	cfg := config.Default()
	if *out == "" {
		if err := cfg.Save(); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), "pfmap.yaml"))
		return
	}
	if err := cfg.SaveTo(*out); err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Wrote %s\n", *out)
}
