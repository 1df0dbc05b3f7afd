package frames

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"pattiprep/internal/config"
	"pattiprep/internal/fileutil"
	"pattiprep/internal/logging"
	"pattiprep/internal/naming"
	"pattiprep/internal/pipeline"
)

const jobName = "frames"

// Options tune a single frames run.
type Options struct {
	// Mode overrides frames.mode when set.
	Mode   string
	DryRun bool
}

// Result reports one processed GIF.
type Result struct {
	ID         string
	Name       string
	Source     string
	FrameCount int
	DelaysMs   []int
	Static     bool
}

// Skipped records a GIF that could not be extracted.
type Skipped struct {
	Source string
	Reason string
}

// Summary is returned by Run.
type Summary struct {
	Mode         string
	OutputDir    string
	ManifestPath string
	DryRun       bool
	Results      []Result
	Skipped      []Skipped
}

// TotalFrames sums frame counts across results.
func (s Summary) TotalFrames() int {
	total := 0
	for _, r := range s.Results {
		total += r.FrameCount
	}
	return total
}

// Runner extracts frame sequences for every GIF in the configured directory.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRunner constructs a frames runner.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	return &Runner{cfg: cfg, logger: logging.NewComponentLogger(logger, "extractor")}
}

// Run processes every GIF and writes the frame manifest.
func (r *Runner) Run(ctx context.Context, opts Options) (Summary, error) {
	ctx = pipeline.WithJob(ctx, jobName)
	logger := logging.WithContext(ctx, r.logger)

	mode := strings.ToLower(strings.TrimSpace(opts.Mode))
	if mode == "" {
		mode = r.cfg.Frames.Mode
	}
	if mode != config.FrameModeOutline && mode != config.FrameModeTemplate {
		return Summary{}, pipeline.Wrap(pipeline.ErrConfiguration, jobName, "select mode",
			fmt.Sprintf("unknown frames mode %q (want %s or %s)", mode, config.FrameModeOutline, config.FrameModeTemplate), nil)
	}

	outDir := r.cfg.FramesOutputDir(mode)
	summary := Summary{
		Mode:         mode,
		OutputDir:    outDir,
		ManifestPath: filepath.Join(outDir, ManifestName),
		DryRun:       opts.DryRun,
	}

	gifDir := r.cfg.Paths.GIFDir
	sources, err := fileutil.ListFiles(gifDir, ".gif")
	if err != nil {
		return summary, pipeline.Wrap(pipeline.ErrNotFound, jobName, "scan gifs", gifDir, err)
	}
	if len(sources) == 0 {
		return summary, pipeline.Wrap(pipeline.ErrNotFound, jobName, "scan gifs",
			fmt.Sprintf("no GIF files found in %s", gifDir), nil)
	}
	logger.Info("extracting frames",
		logging.Int("gif_count", len(sources)),
		logging.String("mode", mode),
		logging.String("output_dir", outDir),
		logging.Bool("dry_run", opts.DryRun),
	)

	if !opts.DryRun {
		if err := fileutil.ResetDir(outDir); err != nil {
			return summary, pipeline.Wrap(pipeline.ErrConfiguration, jobName, "reset output", outDir, err)
		}
	}

	seen := make(map[string]string, len(sources))
	butts := make([]Butt, 0, len(sources))
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		base := filepath.Base(source)
		id := naming.Slug(base)
		if prior, ok := seen[id]; ok || id == "" {
			reason := fmt.Sprintf("id %q collides with %s", id, prior)
			if id == "" {
				reason = "file name produces an empty id"
			}
			logging.WarnWithContext(logger, "skipping gif", "gif_id_collision",
				logging.String(logging.FieldFile, base),
				logging.String("reason", reason),
				logging.String(logging.FieldErrorHint, "rename the GIF so its slug is unique"),
				logging.String(logging.FieldImpact, "animation missing from manifest"),
			)
			summary.Skipped = append(summary.Skipped, Skipped{Source: base, Reason: reason})
			continue
		}
		seen[id] = base

		result, err := r.processGIF(ctx, logger, source, id, outDir, mode, opts.DryRun)
		if err != nil {
			logging.ErrorWithContext(logger, "gif extraction failed", "gif_extract_failed",
				logging.String(logging.FieldFile, base),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, pipeline.Hint(err)),
			)
			summary.Skipped = append(summary.Skipped, Skipped{Source: base, Reason: err.Error()})
			continue
		}
		summary.Results = append(summary.Results, result)
		butts = append(butts, Butt{
			ID:          result.ID,
			Name:        result.Name,
			FrameCount:  result.FrameCount,
			FrameDelays: result.DelaysMs,
		})
	}

	if opts.DryRun {
		logger.Info("dry run complete; nothing written", logging.Int("gif_count", len(summary.Results)))
		return summary, nil
	}
	if err := WriteManifest(summary.ManifestPath, butts); err != nil {
		return summary, pipeline.Wrap(pipeline.ErrTransient, jobName, "write manifest", summary.ManifestPath, err)
	}
	logger.Info("frame manifest written",
		logging.String("path", summary.ManifestPath),
		logging.Int("animations", len(butts)),
		logging.Int("frames", summary.TotalFrames()),
	)
	return summary, nil
}

func (r *Runner) processGIF(ctx context.Context, logger *slog.Logger, source, id, outDir, mode string, dryRun bool) (Result, error) {
	base := filepath.Base(source)
	anim, err := Extract(source)
	if err != nil {
		return Result{}, pipeline.Wrap(pipeline.ErrValidation, jobName, "extract", base, err)
	}
	result := Result{
		ID:         id,
		Name:       naming.DisplayName(base),
		Source:     base,
		FrameCount: anim.Len(),
		DelaysMs:   anim.DelaysMs,
		Static:     anim.Len() <= 1,
	}
	if result.Static {
		logging.WarnWithContext(logger, "gif will not animate", "single_frame_gif",
			logging.String(logging.FieldFile, base),
			logging.Int("frame_count", result.FrameCount),
			logging.String(logging.FieldImpact, "animation shows a static frame"),
			logging.String(logging.FieldErrorHint, "check the GIF has more than one frame"),
		)
	}
	if dryRun {
		logger.Info("would extract frames",
			logging.String(logging.FieldFile, base),
			logging.String("id", id),
			logging.Int("frame_count", result.FrameCount),
		)
		return result, nil
	}

	dir := filepath.Join(outDir, id)
	size := r.cfg.Frames.Size
	for i, frame := range anim.Frames {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		var img image.Image
		if mode == config.FrameModeTemplate {
			img = ProcessTemplate(frame, size)
		} else {
			img = ProcessOutline(frame, size)
		}
		target := filepath.Join(dir, FrameFileName(i))
		if err := writePNG(target, img); err != nil {
			return Result{}, pipeline.Wrap(pipeline.ErrTransient, jobName, "write frame", target, err)
		}
	}
	logger.Info("frames written",
		logging.String(logging.FieldFile, base),
		logging.String("id", id),
		logging.Int("frame_count", result.FrameCount),
	)
	return result, nil
}

// FrameFileName returns the PNG name for frame index i.
func FrameFileName(i int) string {
	return fmt.Sprintf("frame_%02d.png", i)
}

func writePNG(path string, img image.Image) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return png.Encode(w, img)
	})
}
