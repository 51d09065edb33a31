package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/ironsheep/emoji-art-mcp/internal/config"
	"github.com/ironsheep/emoji-art-mcp/internal/engine"
	"github.com/ironsheep/emoji-art-mcp/internal/imaging"
	"github.com/ironsheep/emoji-art-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Options are the command line flags. Flags left at their defaults fall back
// to the environment configuration.
type Options struct {
	Palette string `short:"p" long:"palette" value-name:"CSV" description:"Palette file (overrides EMOJI_MCP_PALETTE)"`
	Width   int    `short:"w" long:"width" description:"Grid width in emoji (overrides EMOJI_MCP_GRID_WIDTH)"`
	MaxSize int    `long:"max-size" description:"Longest source edge in pixels before sampling (overrides EMOJI_MCP_MAX_SIZE)"`
	Workers int    `short:"j" long:"workers" default:"-1" description:"Render workers, 0 for one per CPU (overrides EMOJI_MCP_WORKERS)"`
	Convert string `short:"c" long:"convert" value-name:"IMAGE" description:"Print IMAGE as emoji to stdout instead of serving MCP"`
	EnvFile string `long:"env-file" default:".env" description:"Environment file read before configuration"`
	Version bool   `short:"v" long:"version" description:"Print version information"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.LongDescription = "MCP server that turns images into emoji art. " +
		"Communicates via MCP protocol over stdin/stdout unless --convert is given."
	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			return 0
		}
		return 2
	}

	if opts.Version {
		fmt.Printf("emoji-art-mcp %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return 0
	}

	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}
	applyFlags(cfg, &opts)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}

	// Logs go to stderr; stdout is for MCP protocol or grid output.
	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.New(engine.WithLogger(logger), engine.WithWorkers(cfg.Workers))
	if cfg.Palette != "" {
		eng.LoadPaletteFile(cfg.Palette)
	}

	if opts.Convert != "" {
		if err := convert(ctx, eng, cfg, opts.Convert, os.Stdout, os.Stderr); err != nil {
			logger.Error("Conversion failed", zap.String("path", opts.Convert), zap.Error(err))
			return 1
		}
		return 0
	}

	logger.Info("Emoji MCP server starting",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("commit", GitCommit),
		zap.Int("workers", eng.Workers()),
	)

	srv := server.New(eng,
		server.WithLogger(logger),
		server.WithDefaults(cfg.GridWidth, cfg.MaxSize),
		server.WithVersion(Version),
	)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("Server error", zap.Error(err))
		return 1
	}
	return 0
}

// applyFlags overrides configuration with flags the user set.
func applyFlags(cfg *config.Config, opts *Options) {
	if opts.Palette != "" {
		cfg.Palette = opts.Palette
	}
	if opts.Width != 0 {
		cfg.GridWidth = opts.Width
	}
	if opts.MaxSize != 0 {
		cfg.MaxSize = opts.MaxSize
	}
	if opts.Workers >= 0 {
		cfg.Workers = opts.Workers
	}
}

// convert renders the image at path and writes the grid to out, drawing a
// progress bar on status.
func convert(ctx context.Context, eng *engine.Engine, cfg *config.Config, path string, out, status io.Writer) error {
	img, err := imaging.NewImageCache().Load(path)
	if err != nil {
		return err
	}
	pix, err := imaging.PrepareSource(img, nil, cfg.MaxSize)
	if err != nil {
		return err
	}
	width, height := engine.GridSize(pix.Bounds(), cfg.GridWidth)

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(status),
		progressbar.OptionSetDescription(fmt.Sprintf("Rendering %dx%d", width, height)),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
	grid, err := eng.Render(ctx, pix, width, height, func(percent int) {
		_ = bar.Set(percent)
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	for _, line := range grid.Lines() {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}
