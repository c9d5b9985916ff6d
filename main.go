// Command qrgen renders one QR code image per row of delimiter-separated
// input files. Each eligible row carries an identifier and a payload; the
// identifier names the output file and the payload becomes the symbol.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ian-hamlin/qrgen/generator"
	"github.com/ian-hamlin/qrgen/qr"
	"github.com/ian-hamlin/qrgen/render"
	canvasrenderer "github.com/ian-hamlin/qrgen/render/canvas"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options is the fully validated configuration of one run.
type options struct {
	output     string
	minVersion int
	maxVersion int
	level      qr.Ecc
	chunkSize  int
	hasHeaders bool
	logEnabled bool
	verbose    int
	border     int
	mask       int
	format     render.Format
	scale      int
	delimiter  rune
}

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "qrgen [flags] <infile>...",
		Short:         "Render one QR code image per row of delimiter-separated input",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opt, err := optionsFrom(v)
			if err != nil {
				return err
			}
			return run(cmd, opt, args)
		},
	}

	fl := cmd.Flags()
	fl.StringP("output", "o", "-", "output directory, or the working directory when -")
	fl.IntP("min", "m", qr.MinVersion, "minimum QR Code Model 2 version (1-40)")
	fl.IntP("max", "x", qr.MaxVersion, "maximum QR Code Model 2 version (1-40)")
	fl.StringP("error", "e", "High", "error correction level: Low, Medium, Quartile or High")
	fl.IntP("chunk", "c", 1, "rows to process in parallel per batch")
	fl.BoolP("skip", "s", false, "treat the first row of each file as a header and skip it")
	fl.BoolP("log", "l", false, "enable logging")
	fl.CountP("verbose", "v", "verbose logging (-v, -vv, -vvv)")
	fl.IntP("border", "b", 4, "quiet zone width in modules")
	fl.IntP("mask", "k", qr.MaskAuto, "mask pattern 0-7, encoder's choice when unset")
	fl.StringP("format", "f", "SVG", "output format: SVG or PNG")
	fl.IntP("scale", "a", 8, "pixels per module, PNG only (1-255)")
	fl.StringP("delimiter", "d", ",", "field delimiter")

	v.SetEnvPrefix("QRGEN")
	v.AutomaticEnv()
	if err := v.BindPFlags(fl); err != nil {
		panic(err)
	}

	return cmd
}

// optionsFrom validates the merged flag and QRGEN_* environment values.
func optionsFrom(v *viper.Viper) (*options, error) {
	opt := &options{
		hasHeaders: v.GetBool("skip"),
		logEnabled: v.GetBool("log"),
		verbose:    v.GetInt("verbose"),
	}

	var err error
	if opt.output, err = parseOutputDirectory(v.GetString("output")); err != nil {
		return nil, err
	}
	if opt.minVersion, err = parseVersion(v.GetInt("min")); err != nil {
		return nil, err
	}
	if opt.maxVersion, err = parseVersion(v.GetInt("max")); err != nil {
		return nil, err
	}
	if opt.level, err = qr.ParseEcc(v.GetString("error")); err != nil {
		return nil, err
	}
	if opt.chunkSize, err = parseChunkSize(v.GetInt("chunk")); err != nil {
		return nil, err
	}
	if opt.border, err = parseBorder(v.GetInt("border")); err != nil {
		return nil, err
	}
	if opt.mask, err = parseMask(v.GetInt("mask")); err != nil {
		return nil, err
	}
	if opt.format, err = render.ParseFormat(v.GetString("format")); err != nil {
		return nil, err
	}
	if opt.scale, err = parseScale(v.GetInt("scale")); err != nil {
		return nil, err
	}
	if opt.delimiter, err = parseDelimiter(v.GetString("delimiter")); err != nil {
		return nil, err
	}
	return opt, nil
}

func parseOutputDirectory(s string) (string, error) {
	if s != "-" {
		return s, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("unable to access the current working directory: %w", err)
	}
	return dir, nil
}

func parseVersion(v int) (int, error) {
	if v < qr.MinVersion || v > qr.MaxVersion {
		return 0, fmt.Errorf("QR Code Model 2 version number must be between 1 and 40 inclusive")
	}
	return v, nil
}

func parseChunkSize(v int) (int, error) {
	if v < 1 {
		return 0, fmt.Errorf("Chunk size must be a number greater than 0")
	}
	return v, nil
}

func parseBorder(v int) (int, error) {
	if v < 0 || v > 255 {
		return 0, fmt.Errorf("The border must be a number between 0 and 255 inclusive")
	}
	return v, nil
}

func parseMask(v int) (int, error) {
	if v != qr.MaskAuto && (v < 0 || v > 7) {
		return 0, fmt.Errorf("QR mask must be between 0 and 7 inclusive")
	}
	return v, nil
}

func parseScale(v int) (int, error) {
	if v < 1 || v > 255 {
		return 0, fmt.Errorf("The module scale must be a number between 1 and 255 inclusive")
	}
	return v, nil
}

func parseDelimiter(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("The delimiter must be a single character")
	}
	return r, nil
}

func run(cmd *cobra.Command, opt *options, files []string) error {
	logger := newLogger(opt.logEnabled, opt.verbose)

	if opt.minVersion > opt.maxVersion {
		logger.Warn("minimum version is above maximum version, raising the maximum",
			"min", opt.minVersion, "max", opt.maxVersion)
		opt.maxVersion = opt.minVersion
	}

	enc, err := qr.NewCoder(qr.Config{
		MinVersion: opt.minVersion,
		MaxVersion: opt.maxVersion,
		Level:      opt.level,
		Mask:       opt.mask,
	})
	if err != nil {
		return err
	}

	cfg := render.Config{Border: opt.border, Scale: opt.scale}
	var renderer render.Renderer
	if opt.format == render.PNG {
		renderer, err = render.NewRaster(cfg)
	} else {
		renderer, err = canvasrenderer.NewRenderer(cfg)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opt.output, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", opt.output, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Info("qrgen start", "files", len(files), "format", opt.format.String(), "chunk", opt.chunkSize)
	gen := generator.New(files, enc, renderer,
		generator.Output{Dir: opt.output, Format: opt.format},
		generator.Processing{ChunkSize: opt.chunkSize, HasHeaders: opt.hasHeaders, Delimiter: opt.delimiter},
		logger,
	)
	stats := gen.Run(ctx)
	logger.Info("qrgen end",
		"sources", stats.Sources, "sourcesFailed", stats.SourcesFailed,
		"rendered", stats.Rendered, "skipped", stats.Skipped, "failed", stats.Failed)
	return nil
}

// newLogger drops everything unless logging was asked for; the verbosity
// count mirrors -v/-vv/-vvv.
func newLogger(enabled bool, verbose int) *slog.Logger {
	if !enabled {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	level := slog.LevelWarn
	switch {
	case verbose >= 2:
		level = slog.LevelDebug
	case verbose == 1:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
