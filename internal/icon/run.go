package icon

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pattiprep/internal/config"
	"pattiprep/internal/fileutil"
	"pattiprep/internal/logging"
	"pattiprep/internal/pipeline"
)

const jobName = "icon"

// Options tune a single icon run.
type Options struct {
	// Source overrides paths.icon_source when set.
	Source string
	DryRun bool
}

// Output records one written (or planned) PNG.
type Output struct {
	Name   string
	Pixels int
}

// Summary is returned by Run.
type Summary struct {
	Source    string
	OutputDir string
	Geometry  Geometry
	Outputs   []Output
	DryRun    bool
}

// Runner renders the icon set.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRunner constructs an icon runner.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logging.NewComponentLogger(logger, "renderer")}
}

// GeometryFromConfig builds the icon layout from configuration.
func GeometryFromConfig(cfg config.Icon) (Geometry, error) {
	top, err := ParseColor(cfg.ColorTop)
	if err != nil {
		return Geometry{}, err
	}
	bottom, err := ParseColor(cfg.ColorBottom)
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{
		Canvas:      cfg.CanvasSize,
		Body:        cfg.BodySize,
		Exponent:    cfg.SquircleExponent,
		Supersample: cfg.Supersample,
		ArtScale:    cfg.ArtScale,
		Top:         top,
		Bottom:      bottom,
	}, nil
}

// Run renders the master icon and writes every size plus Contents.json.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	ctx = pipeline.WithJob(ctx, jobName)
	logger := logging.WithContext(ctx, r.logger)

	geometry, err := GeometryFromConfig(r.cfg.Icon)
	if err != nil {
		return Summary{}, pipeline.Wrap(pipeline.ErrConfiguration, jobName, "parse colours", "", err)
	}
	source := r.cfg.Paths.IconSource
	if strings.TrimSpace(opts.Source) != "" {
		source, err = config.ExpandPath(opts.Source)
		if err != nil {
			return Summary{}, pipeline.Wrap(pipeline.ErrConfiguration, jobName, "resolve source", opts.Source, err)
		}
	}
	summary := Summary{
		Source:    source,
		OutputDir: r.cfg.Paths.IconDir,
		Geometry:  geometry,
		DryRun:    opts.DryRun,
	}

	if _, err := os.Stat(source); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return summary, pipeline.Wrap(pipeline.ErrNotFound, jobName, "open source",
				fmt.Sprintf("icon source %s does not exist", source), nil)
		}
		return summary, pipeline.Wrap(pipeline.ErrNotFound, jobName, "open source", source, err)
	}

	art, err := ExtractArt(source)
	if err != nil {
		return summary, pipeline.Wrap(pipeline.ErrValidation, jobName, "extract art", filepath.Base(source), err)
	}
	logger.Info("rendering master icon",
		logging.String(logging.FieldFile, filepath.Base(source)),
		logging.Int("canvas", geometry.Canvas),
		logging.Int("body", geometry.Body),
		logging.Int("art", geometry.ArtSize()),
		logging.String("gradient", HexColor(geometry.Top)+"->"+HexColor(geometry.Bottom)),
	)
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	master := BuildMaster(geometry, art)

	for _, size := range MacSizes {
		summary.Outputs = append(summary.Outputs, Output{Name: size.FileName(), Pixels: size.Pixels()})
	}
	if opts.DryRun {
		logger.Info("dry run complete; nothing written", logging.Int("sizes", len(MacSizes)))
		return summary, nil
	}

	for _, size := range MacSizes {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		target := filepath.Join(summary.OutputDir, size.FileName())
		img := Scale(master, size.Pixels())
		if err := writePNG(target, img); err != nil {
			return summary, pipeline.Wrap(pipeline.ErrTransient, jobName, "write icon", target, err)
		}
		logger.Debug("icon written", logging.String(logging.FieldFile, size.FileName()), logging.Int("pixels", size.Pixels()))
	}

	contents, err := EncodeContents(MacSizes)
	if err != nil {
		return summary, pipeline.Wrap(pipeline.ErrTransient, jobName, "encode catalog", "", err)
	}
	contentsPath := filepath.Join(summary.OutputDir, ContentsName)
	if err := fileutil.WriteFileAtomic(contentsPath, contents, 0o644); err != nil {
		return summary, pipeline.Wrap(pipeline.ErrTransient, jobName, "write catalog", contentsPath, err)
	}
	logger.Info("icon set written",
		logging.String("output_dir", summary.OutputDir),
		logging.Int("sizes", len(MacSizes)),
	)
	return summary, nil
}

func writePNG(path string, img image.Image) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return png.Encode(w, img)
	})
}
