// skintool is a CLI utility for rendering avatars and working with
// skinforge template packs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/skinforge/internal/assets"
	"github.com/Faultbox/skinforge/internal/logger"
	"github.com/Faultbox/skinforge/internal/render"
	"github.com/Faultbox/skinforge/internal/templates"
	"github.com/Faultbox/skinforge/pkg/pak"
	"github.com/Faultbox/skinforge/pkg/skin"
	"github.com/Faultbox/skinforge/pkg/uvtpl"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	logger.Init("warn", "")
	defer logger.Sync()

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "render":
		cmdRender(args)
	case "pack":
		cmdPack(args)
	case "unpack", "x":
		cmdUnpack(args)
	case "list", "ls":
		cmdList(args)
	case "info":
		cmdInfo(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`skintool - skinforge avatar and template pack utility

Usage:
  skintool <command> [options]

Commands:
  render -templates <dir> [-variant v] [-scale n] [-o out.png] <skin.png>
                                     Render a flat avatar from a skin
  pack <dir> <out.pak>               Build a template pack from a directory
  unpack <file.pak> [output_dir]     Extract a template pack
  list <file.pak>                    List pack entries
  info -templates <dir>|-pack <file> Show template set statistics

Examples:
  skintool render -templates ./templates -variant slim -scale 4 skin.png
  skintool pack ./templates templates.pak
  skintool info -pack templates.pak`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// sourceFlags resolves the -templates / -pack pair into a Source.
func sourceFlags(dir, packFile string) (assets.Source, error) {
	switch {
	case packFile != "":
		return assets.OpenPak(packFile)
	case dir != "":
		return assets.NewDir(dir), nil
	default:
		return nil, fmt.Errorf("one of -templates or -pack is required")
	}
}

func cmdRender(args []string) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	dir := fs.String("templates", "", "Template directory")
	packFile := fs.String("pack", "", "Template pack file")
	variantName := fs.String("variant", "auto", "Model variant: classic, slim or auto")
	scale := fs.Int("scale", 1, "Integer upscale factor")
	out := fs.String("o", "avatar.png", "Output file")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fatal("usage: skintool render [options] <skin.png>")
	}

	source, err := sourceFlags(*dir, *packFile)
	if err != nil {
		fatal("%v", err)
	}

	format := skin.DefaultFormat()
	store, err := templates.Load(context.Background(), source, format)
	if err != nil {
		fatal("loading templates: %v", err)
	}

	skinData, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fatal("%v", err)
	}
	tex, err := skin.Decode(skinData, format)
	if err != nil {
		fatal("%v", err)
	}

	var variant skin.Variant
	if *variantName == "auto" {
		variant = skin.DetectVariant(tex)
		fmt.Printf("Detected variant: %s\n", variant)
	} else {
		variant, err = skin.ParseVariant(*variantName)
		if err != nil {
			fatal("%v", err)
		}
	}

	img, err := render.New(store).Render(render.Request{Skin: tex, Variant: variant})
	if err != nil {
		fatal("rendering: %v", err)
	}
	img, err = render.Upscale(img, *scale)
	if err != nil {
		fatal("%v", err)
	}

	encoded, err := skin.Encode(img)
	if err != nil {
		fatal("%v", err)
	}
	if err := os.WriteFile(*out, encoded, 0644); err != nil {
		fatal("%v", err)
	}

	fmt.Printf("Rendered: %s (%dx%d)\n", *out, img.Bounds().Dx(), img.Bounds().Dy())
}

func cmdPack(args []string) {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 2 {
		fatal("usage: skintool pack <dir> <out.pak>")
	}

	source := assets.NewDir(fs.Arg(0))
	paths, err := source.List()
	if err != nil {
		fatal("%v", err)
	}

	w := pak.NewWriter()
	for _, p := range paths {
		data, err := source.Read(p)
		if err != nil {
			fatal("%v", err)
		}
		if err := w.Add(p, data); err != nil {
			fatal("%v", err)
		}
	}

	if err := w.WriteFile(fs.Arg(1)); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Packed %d entries into %s\n", len(paths), fs.Arg(1))
}

func cmdUnpack(args []string) {
	fs := flag.NewFlagSet("unpack", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fatal("usage: skintool unpack <file.pak> [output_dir]")
	}
	outputDir := "."
	if fs.NArg() > 1 {
		outputDir = fs.Arg(1)
	}

	archive, err := pak.Open(fs.Arg(0))
	if err != nil {
		fatal("%v", err)
	}

	for _, name := range archive.List() {
		data, err := archive.Read(name)
		if err != nil {
			fatal("reading %s: %v", name, err)
		}

		outputPath := filepath.Join(outputDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			fatal("%v", err)
		}
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			fatal("%v", err)
		}
		fmt.Printf("Extracted: %s\n", outputPath)
	}
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fatal("usage: skintool list <file.pak>")
	}

	archive, err := pak.Open(fs.Arg(0))
	if err != nil {
		fatal("%v", err)
	}

	names := archive.List()
	for _, name := range names {
		fmt.Println(name)
	}
	fmt.Fprintf(os.Stderr, "\n(%d entries)\n", len(names))
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	dir := fs.String("templates", "", "Template directory")
	packFile := fs.String("pack", "", "Template pack file")
	fs.Parse(args)

	source, err := sourceFlags(*dir, *packFile)
	if err != nil {
		fatal("%v", err)
	}

	format := skin.DefaultFormat()
	store, err := templates.Load(context.Background(), source, format)
	if err != nil {
		fatal("loading templates: %v", err)
	}

	fmt.Printf("Format:  %dx%d texture, %dx%d canvas\n",
		format.TextureWidth, format.TextureHeight,
		format.CanvasWidth, format.CanvasHeight)

	printBucket("universal", store.Universal())
	for _, v := range skin.Variants() {
		parts, _ := store.PartsFor(v)
		overlays, _ := store.Overlays(v)
		printBucket(v.String(), parts[len(store.Universal()):])
		printBucket(v.String()+"/overlays", overlays)
	}
}

func printBucket(label string, tpls []*uvtpl.Template) {
	fmt.Printf("\n%s (%d):\n", label, len(tpls))
	for _, t := range tpls {
		name := strings.TrimPrefix(t.Name, label+"/")
		fmt.Printf("  %-30s covered=%-6d max_depth=%d\n", name, t.Covered(), t.MaxDepth)
	}
}
