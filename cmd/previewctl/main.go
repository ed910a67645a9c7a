// Command previewctl renders and caches previews for cursor resources.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/cursorkit/preview"
	"github.com/cursorkit/preview/render"
)

var version = "dev"

// CLI is the top-level command structure for previewctl.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Config  string           `help:"Path to YAML config file." type:"path"`
	Verbose bool             `help:"Enable debug logging." short:"v"`

	Warm   WarmCmd   `cmd:"" help:"Render and cache previews for every cursor file under a directory."`
	Show   ShowCmd   `cmd:"" help:"Render the preview for one cursor resource and describe it."`
	Glyphs GlyphsCmd `cmd:"" help:"List built-in system cursor names."`
}

// service builds the preview service from the CLI flags and config file.
func (c *CLI) service() (*preview.Service, error) {
	cfg, err := LoadConfig(c.Config)
	if err != nil {
		return nil, err
	}

	var logger *slog.Logger
	if c.Verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	renderOpts := []render.Option{render.WithThumbnailEdge(cfg.ThumbnailEdge)}
	opts := []preview.Option{
		preview.WithStaticCapacity(cfg.StaticCapacity),
		preview.WithAnimatedCapacity(cfg.AnimatedCapacity),
		preview.WithPreloadConcurrency(cfg.PreloadWorkers),
	}
	if logger != nil {
		renderOpts = append(renderOpts, render.WithLogger(logger))
		opts = append(opts, preview.WithLogger(logger))
	}
	if cfg.CompressAnimated {
		opts = append(opts, preview.WithAnimatedCompression())
	}

	return preview.NewService(render.New(renderOpts...), opts...), nil
}

// WarmCmd preloads previews for a cursor library directory.
type WarmCmd struct {
	Dir string `arg:"" help:"Directory to scan for cursor files." type:"existingdir"`
}

var cursorExts = map[string]bool{
	".cur":  true,
	".ico":  true,
	".ani":  true,
	".gif":  true,
	".png":  true,
	".bmp":  true,
	".jpg":  true,
	".jpeg": true,
}

// Run executes the warm command.
func (c *WarmCmd) Run(cli *CLI) error {
	svc, err := cli.service()
	if err != nil {
		return err
	}

	var descs []preview.Descriptor
	err = filepath.WalkDir(c.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !cursorExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		descs = append(descs, preview.Descriptor{Name: name, Path: path})
		return nil
	})
	if err != nil {
		return fmt.Errorf("warm: %w", err)
	}

	svc.Preload(context.Background(), descs)

	stats := svc.Stats()
	fmt.Printf("scanned %d cursor files\n", len(descs))
	fmt.Printf("static cache:   %d/%d\n", stats.StaticSize, stats.StaticCapacity)
	fmt.Printf("animated cache: %d/%d (animated resources load on demand)\n", stats.AnimatedSize, stats.AnimatedCapacity)
	return nil
}

// ShowCmd renders one preview and describes it.
type ShowCmd struct {
	Resource string `arg:"" help:"Cursor file path or built-in cursor name."`
	Out      string `help:"Write the preview payload (data URI) to a file." type:"path"`
}

// Run executes the show command.
func (c *ShowCmd) Run(cli *CLI) error {
	svc, err := cli.service()
	if err != nil {
		return err
	}
	ctx := context.Background()

	desc := preview.Descriptor{Name: c.Resource}
	if !render.IsSystemCursor(c.Resource) {
		base := filepath.Base(c.Resource)
		desc = preview.Descriptor{
			Name: strings.TrimSuffix(base, filepath.Ext(base)),
			Path: c.Resource,
		}
	}

	if desc.IsAnimated() {
		anim, err := svc.Animated(ctx, desc)
		if err != nil {
			return err
		}
		fmt.Printf("animated preview: %d frames, %s total (%s)\n", len(anim.Frames), anim.TotalDuration(), desc.Key())
		for i, delay := range anim.Delays {
			fmt.Printf("  frame %d: %d bytes, shown %s\n", i, len(anim.Frames[i]), delay)
		}
		if c.Out != "" {
			return os.WriteFile(c.Out, []byte(strings.Join(anim.Frames, "\n")), 0o644)
		}
		return nil
	}

	payload, err := svc.Static(ctx, desc)
	if err != nil {
		return err
	}
	fmt.Printf("static preview: %d bytes (%s)\n", len(payload), desc.Key())
	if c.Out != "" {
		return os.WriteFile(c.Out, []byte(payload), 0o644)
	}
	return nil
}

// GlyphsCmd lists the built-in system cursor names.
type GlyphsCmd struct{}

// Run executes the glyphs command.
func (c *GlyphsCmd) Run() error {
	for _, name := range render.SystemCursors() {
		fmt.Println(name)
	}
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("previewctl"),
		kong.Description("Render and cache previews for cursor resources."),
		kong.Vars{"version": version},
	)
	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
