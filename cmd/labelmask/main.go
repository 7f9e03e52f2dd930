// Labelmask converts labelme annotation files into mask images.
//
// Usage:
//
//	labelmask [flags] annotation.json...
//
// By default, one mask is written for every record of every input file,
// named <base>_<index>_<label>.<ext>. With --per-label one mask is
// written per label, with --union a single mask per input file.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"seehuhn.de/go/labelmask"
	"seehuhn.de/go/labelmask/internal/config"
	"seehuhn.de/go/labelmask/internal/logging"
	"seehuhn.de/go/labelmask/labelme"
	"seehuhn.de/go/labelmask/maskio"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr, logging.New))
}

// mode selects which masks are written for an input file.
type mode int

const (
	perRecord mode = iota
	perLabel
	union
)

type job struct {
	outDir  string
	mode    mode
	shapes  labelme.Options
	images  maskio.Options
	logger  *zap.Logger
	written []string
}

// run processes all files named in args and returns the exit code.
// run converts the files named in args and returns the exit code.
// The logger is built by newLogger once the configuration is known.
func run(args []string, stderr io.Writer, newLogger func(mode string) (*zap.Logger, error)) int {
	fs := pflag.NewFlagSet("labelmask", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "YAML configuration file")
	outDir := fs.StringP("out", "o", "", "output directory (default: next to the input file)")
	perLabelFlag := fs.Bool("per-label", false, "write one mask per label")
	unionFlag := fs.Bool("union", false, "write one mask with all records")
	fs.Int("line-width", labelmask.DefaultLineWidth, "stroke width for line and linestrip records")
	fs.Int("point-radius", labelmask.DefaultPointRadius, "radius for point records")
	fs.Bool("invert", false, "write set pixels as black on white")
	fs.String("format", "png", "output format: png, bmp or tiff")
	fs.String("fill-rule", "evenodd", "polygon fill rule: evenodd or nonzero")
	fs.Bool("unknown-as-polygon", false, "treat unknown shape types as polygons")
	fs.String("log-mode", "debug", "log mode: debug or release")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: labelmask [flags] annotation.json...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	if *perLabelFlag && *unionFlag {
		fmt.Fprintln(stderr, "labelmask: --per-label and --union are mutually exclusive")
		return 2
	}

	v := config.NewViper()
	if err := config.ReadFile(v, *configFile); err != nil {
		fmt.Fprintln(stderr, "labelmask:", err)
		return 1
	}
	if err := config.BindFlags(v, fs); err != nil {
		fmt.Fprintln(stderr, "labelmask:", err)
		return 1
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		fmt.Fprintln(stderr, "labelmask:", err)
		return 1
	}

	logger, err := newLogger(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logging.Sync(logger)

	j := &job{
		outDir: *outDir,
		shapes: cfg.LabelmeOptions(),
		images: cfg.MaskioOptions(),
		logger: logger,
	}
	switch {
	case *perLabelFlag:
		j.mode = perLabel
	case *unionFlag:
		j.mode = union
	}
	if j.outDir != "" {
		if err := os.MkdirAll(j.outDir, 0o755); err != nil {
			fmt.Fprintln(stderr, "labelmask:", err)
			return 1
		}
	}

	failed := 0
	for _, path := range fs.Args() {
		if err := j.process(path); err != nil {
			logger.Error("failed to convert annotation file",
				zap.String("file", path), zap.Error(err))
			failed++
		}
	}
	logger.Info("done",
		zap.Int("files", fs.NArg()),
		zap.Int("failed", failed),
		zap.Int("masks", len(j.written)))
	if failed > 0 {
		return 1
	}
	return 0
}

func (j *job) process(path string) error {
	f, err := labelme.Load(path)
	if err != nil {
		return err
	}

	dir := j.outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := func(parts ...string) string {
		return filepath.Join(dir, strings.Join(append([]string{base}, parts...), "_")+j.images.Format.Ext())
	}

	switch j.mode {
	case union:
		m, err := f.UnionMask(j.shapes)
		if err != nil {
			return err
		}
		return j.write(name("mask"), m)

	case perLabel:
		for _, label := range f.Labels() {
			m, err := f.LabelMask(label, j.shapes)
			if err != nil {
				return err
			}
			if err := j.write(name(safeName(label)), m); err != nil {
				return err
			}
		}

	default:
		for i, rec := range f.Shapes {
			m, err := f.Mask(i, j.shapes)
			if err != nil {
				return err
			}
			if err := j.write(name(strconv.Itoa(i), safeName(rec.Label)), m); err != nil {
				return err
			}
		}
	}
	return nil
}

func (j *job) write(path string, m *labelmask.Mask) (err error) {
	fd, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fd.Close(); err == nil {
			err = cerr
		}
	}()

	if err := maskio.Encode(fd, m, j.images); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	j.logger.Debug("mask written",
		zap.String("file", path),
		zap.Int("pixels", m.Count()))
	j.written = append(j.written, path)
	return nil
}

// safeName replaces characters which cannot appear in file names.
func safeName(label string) string {
	if label == "" {
		return "unlabelled"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '-'
		}
		if r < 0x20 {
			return '-'
		}
		return r
	}, label)
}
