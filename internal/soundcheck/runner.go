package soundcheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"pattiprep/internal/analysiscache"
	"pattiprep/internal/config"
	"pattiprep/internal/deps"
	"pattiprep/internal/fileutil"
	"pattiprep/internal/logging"
	"pattiprep/internal/manifest"
	"pattiprep/internal/media/audio"
	"pattiprep/internal/media/ffmpeg"
	"pattiprep/internal/media/pcm"
	"pattiprep/internal/naming"
	"pattiprep/internal/pipeline"
)

const jobName = "sounds"

// Options tune a single sounds run.
type Options struct {
	DryRun bool
}

// Runner executes the sound asset pipeline.
type Runner struct {
	cfg     *config.Config
	logger  *slog.Logger
	decoder audio.Decoder
	cache   *analysiscache.Store
}

// NewRunner constructs a sounds runner. cache may be nil.
func NewRunner(cfg *config.Config, logger *slog.Logger, cache *analysiscache.Store) *Runner {
	return &Runner{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "soundcheck"),
		decoder: audio.Decoder{FFmpeg: cfg.FFmpegBinary(), FFprobe: deps.ResolveFFprobe(cfg.FFmpegBinary(), cfg.FFprobeBinary())},
		cache:   cache,
	}
}

// run carries per-invocation state.
type run struct {
	*Runner
	ctx     context.Context
	logger  *slog.Logger
	opts    Options
	report  *Report
	decoded map[string]pcm.Audio
}

// Run scans, converts, segments, reconciles, and writes the manifest.
func (r *Runner) Run(ctx context.Context, opts Options) (Report, error) {
	ctx = pipeline.WithJob(ctx, jobName)
	state := &run{
		Runner:  r,
		ctx:     ctx,
		logger:  logging.WithContext(ctx, r.logger),
		opts:    opts,
		decoded: make(map[string]pcm.Audio),
		report: &Report{
			SoundsDir:       r.cfg.Paths.SoundsDir,
			ManifestPath:    r.cfg.ManifestPath(),
			DryRun:          opts.DryRun,
			DefaultCategory: r.cfg.Sounds.DefaultCategory,
		},
	}
	err := state.execute()
	return *state.report, err
}

func (s *run) execute() error {
	soundsDir := s.cfg.Paths.SoundsDir
	if !fileutil.IsDir(soundsDir) {
		return pipeline.Wrap(pipeline.ErrNotFound, jobName, "scan",
			fmt.Sprintf("sounds directory not found: %s", soundsDir), nil)
	}

	sounds, shuffle, err := s.scan()
	if err != nil {
		return err
	}
	s.report.Scanned = len(sounds) + len(shuffle)
	s.logger.Info("scanned audio files",
		logging.Int("sounds", len(sounds)),
		logging.Int("shuffle", len(shuffle)),
		logging.String("sounds_dir", soundsDir),
	)
	if len(sounds) == 0 && len(shuffle) == 0 {
		s.report.NothingToDo = true
		s.logger.Info("Nothing to do.")
		return nil
	}

	if err := s.convert(append(slices.Clone(sounds), shuffle...)); err != nil {
		return err
	}
	if !s.opts.DryRun {
		if sounds, shuffle, err = s.scan(); err != nil {
			return err
		}
	}

	segmentStems := s.splitShuffle(shuffle)
	s.cleanOrphans(shuffle)

	existing, err := s.loadManifest()
	if err != nil {
		return err
	}

	sources := make([]manifest.Source, 0, len(sounds)+len(shuffle))
	for _, path := range sounds {
		sources = append(sources, sourceFor(path, false))
	}
	for _, path := range shuffle {
		sources = append(sources, sourceFor(path, true))
	}
	result := manifest.Reconcile(existing, sources, s.cfg.Sounds.DefaultCategory)
	s.report.Added = refs(result.Added)
	s.report.Removed = refs(result.Removed)
	s.report.Adopted = refs(result.Adopted)
	for _, removed := range result.Removed {
		s.logger.Info("file no longer on disk; entry removed",
			logging.String("id", removed.ID),
			logging.String(logging.FieldFile, removed.FileName()),
		)
	}
	for _, dup := range result.Duplicates {
		logging.WarnWithContext(s.logger, "duplicate manifest entry dropped", "manifest_duplicate",
			logging.String("id", dup.ID),
			logging.String(logging.FieldFile, dup.FileName()),
			logging.String(logging.FieldImpact, "a later entry for the same file is kept"),
		)
	}
	for _, adopted := range result.Adopted {
		s.logger.Info("entry follows renamed file",
			logging.String("id", adopted.ID),
			logging.String(logging.FieldFile, adopted.FileName()),
		)
	}

	s.refreshDerived(result.Entries, segmentStems)

	s.report.Categories = categoryCounts(result.Entries)
	s.report.Total = len(result.Entries)

	if s.opts.DryRun {
		s.logger.Info("dry run complete; manifest not written",
			logging.Int("entries", len(result.Entries)),
			logging.Int("new", len(result.Added)),
		)
		return nil
	}
	if err := manifest.Save(s.report.ManifestPath, result.Entries); err != nil {
		return pipeline.Wrap(pipeline.ErrTransient, jobName, "write manifest", s.report.ManifestPath, err)
	}
	s.report.Written = true
	s.logger.Info("manifest written",
		logging.String("path", s.report.ManifestPath),
		logging.Int("entries", len(result.Entries)),
		logging.Int("new", len(result.Added)),
	)
	return nil
}

func (s *run) audioExtensions() []string {
	return append(slices.Clone(s.cfg.Sounds.SupportedExtensions), s.cfg.Sounds.ConvertibleExtensions...)
}

// scan lists top-level audio files in the sounds and shuffle directories.
func (s *run) scan() ([]string, []string, error) {
	exts := s.audioExtensions()
	sounds, err := fileutil.ListFiles(s.cfg.Paths.SoundsDir, exts...)
	if err != nil {
		return nil, nil, pipeline.Wrap(pipeline.ErrNotFound, jobName, "scan", s.cfg.Paths.SoundsDir, err)
	}
	manifestName := filepath.Base(s.report.ManifestPath)
	sounds = slices.DeleteFunc(sounds, func(path string) bool {
		return filepath.Base(path) == manifestName
	})

	var shuffle []string
	if dir := s.cfg.Paths.ShuffleDir; dir != "" && filepath.Clean(dir) != filepath.Clean(s.cfg.Paths.SoundsDir) {
		shuffle, err = fileutil.ListFiles(dir, exts...)
		if err != nil {
			return nil, nil, pipeline.Wrap(pipeline.ErrNotFound, jobName, "scan shuffle", dir, err)
		}
	}
	return sounds, shuffle, nil
}

func (s *run) isConvertible(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(s.cfg.Sounds.ConvertibleExtensions, ext)
}

// convert turns convertible files into WAV beside the original. A failed
// conversion keeps the original and is reported, not fatal.
func (s *run) convert(paths []string) error {
	var pending []string
	for _, path := range paths {
		if s.isConvertible(path) {
			pending = append(pending, path)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	ffmpegBin := s.cfg.FFmpegBinary()
	if err := ffmpeg.Available(s.ctx, ffmpegBin); err != nil {
		return pipeline.Wrap(pipeline.ErrExternalTool, jobName, "convert",
			"ffmpeg is required to convert unsupported formats (install with: brew install ffmpeg)", err)
	}
	s.logger.Info("files need conversion", logging.Int("count", len(pending)))

	for _, source := range pending {
		if err := s.ctx.Err(); err != nil {
			return err
		}
		target := strings.TrimSuffix(source, filepath.Ext(source)) + ".wav"
		conv := Conversion{Source: filepath.Base(source), Target: filepath.Base(target)}
		if s.opts.DryRun {
			conv.Planned = true
			s.logger.Info("would convert",
				logging.String(logging.FieldFile, conv.Source),
				logging.String("target", conv.Target),
			)
			s.report.Conversions = append(s.report.Conversions, conv)
			continue
		}
		if err := ffmpeg.Convert(s.ctx, ffmpegBin, source, target); err != nil {
			conv.Error = err.Error()
			logging.ErrorWithContext(s.logger, "conversion failed; original kept", "ffmpeg_convert_failed",
				logging.String(logging.FieldFile, conv.Source),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the file plays with ffplay, or convert it by hand"),
			)
			s.report.Conversions = append(s.report.Conversions, conv)
			continue
		}
		if err := os.Remove(source); err != nil {
			logging.WarnWithContext(s.logger, "converted but could not remove original", "convert_cleanup_failed",
				logging.String(logging.FieldFile, conv.Source),
				logging.Error(err),
				logging.String(logging.FieldImpact, "both files will appear in the manifest"),
				logging.String(logging.FieldErrorHint, "delete the original by hand"),
			)
		}
		s.logger.Info("converted",
			logging.String(logging.FieldFile, conv.Source),
			logging.String("target", conv.Target),
		)
		s.report.Conversions = append(s.report.Conversions, conv)
	}
	return nil
}

func (s *run) loadManifest() ([]manifest.Entry, error) {
	existing, err := manifest.Load(s.report.ManifestPath)
	if err == nil {
		return existing, nil
	}
	if errors.Is(err, manifest.ErrMalformed) {
		s.report.ManifestReset = true
		logging.WarnWithContext(s.logger, "could not parse existing manifest, starting fresh", "manifest_malformed",
			logging.String("path", s.report.ManifestPath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "custom names and categories are lost"),
			logging.String(logging.FieldErrorHint, "restore the manifest from version control before re-running"),
		)
		return nil, nil
	}
	return nil, pipeline.Wrap(pipeline.ErrConfiguration, jobName, "load manifest", s.report.ManifestPath, err)
}

func sourceFor(path string, shuffle bool) manifest.Source {
	name := filepath.Base(path)
	return manifest.Source{File: naming.Stem(name), Ext: naming.Ext(name), Shuffle: shuffle}
}

// load decodes path once per run.
func (s *run) load(path string) (pcm.Audio, error) {
	if decoded, ok := s.decoded[path]; ok {
		return decoded, nil
	}
	decoded, err := s.decoder.Load(s.ctx, path)
	if err != nil {
		return pcm.Audio{}, err
	}
	s.decoded[path] = decoded
	return decoded, nil
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
