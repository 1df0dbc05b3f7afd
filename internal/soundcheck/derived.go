package soundcheck

import (
	"path/filepath"
	"slices"

	"pattiprep/internal/analysiscache"
	"pattiprep/internal/logging"
	"pattiprep/internal/manifest"
	"pattiprep/internal/naming"
	"pattiprep/internal/segments"
	"pattiprep/internal/waveform"
)

func (s *run) segmentOptions() segments.Options {
	return segments.Options{
		SilenceThreshDB: s.cfg.Segments.SilenceThreshDB,
		MinSilenceMs:    s.cfg.Segments.MinSilenceMs,
		PaddingMs:       s.cfg.Segments.PaddingMs,
		MinSegmentMs:    s.cfg.Segments.MinSegmentMs,
	}
}

// splitShuffle segments every shuffle source and returns the segment stems
// keyed by the source file name.
func (s *run) splitShuffle(paths []string) map[string][]string {
	stems := make(map[string][]string, len(paths))
	if len(paths) == 0 {
		return stems
	}
	outDir := s.cfg.Paths.SegmentsDir
	opts := s.segmentOptions()
	logger := logging.NewComponentLogger(s.logger, "segments")

	for _, path := range paths {
		if s.ctx.Err() != nil {
			return stems
		}
		name := filepath.Base(path)
		result := ShuffleResult{Source: name, Base: naming.Slug(name)}

		plan, cached := s.cachedPlan(path, opts)
		if cached && s.segmentsPresent(outDir, result.Base, plan) {
			result.Cached = true
		} else {
			var err error
			if !cached {
				plan, err = s.planSegments(path, opts)
			}
			if err == nil && !s.opts.DryRun {
				err = s.exportSegments(path, outDir, &result, plan)
			}
			if err != nil {
				result.Error = err.Error()
				logging.ErrorWithContext(logger, "shuffle split failed", "shuffle_split_failed",
					logging.String(logging.FieldFile, name),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check the shuffle source decodes cleanly"),
				)
				s.report.Shuffle = append(s.report.Shuffle, result)
				continue
			}
		}

		result.Segments = make([]string, 0, len(plan))
		for _, seg := range plan {
			result.Segments = append(result.Segments, naming.Stem(segments.FileName(result.Base, seg.Index)))
		}
		stems[name] = result.Segments
		logger.Info("split shuffle source",
			logging.String(logging.FieldFile, name),
			logging.Int("segments", len(result.Segments)),
			logging.Bool("cached", result.Cached),
			logging.Bool("dry_run", s.opts.DryRun),
		)
		s.report.Shuffle = append(s.report.Shuffle, result)
	}
	return stems
}

func (s *run) cachedPlan(path string, opts segments.Options) ([]segments.Segment, bool) {
	if s.cache == nil {
		return nil, false
	}
	key, err := analysiscache.KeyFor(path)
	if err != nil {
		return nil, false
	}
	plan, ok, err := s.cache.SegmentPlan(s.ctx, key, opts)
	if err != nil {
		s.logger.Debug("segment plan cache lookup failed", logging.Error(err))
		return nil, false
	}
	return plan, ok
}

// segmentsPresent reports whether outDir holds exactly the files plan names.
func (s *run) segmentsPresent(outDir, base string, plan []segments.Segment) bool {
	existing, err := segments.Existing(outDir, base)
	if err != nil || len(existing) != len(plan) {
		return false
	}
	for i, seg := range plan {
		if filepath.Base(existing[i]) != segments.FileName(base, seg.Index) {
			return false
		}
	}
	return true
}

func (s *run) planSegments(path string, opts segments.Options) ([]segments.Segment, error) {
	decoded, err := s.load(path)
	if err != nil {
		return nil, err
	}
	plan := segments.Plan(decoded, opts)
	if s.cache != nil {
		if key, err := analysiscache.KeyFor(path); err == nil {
			if err := s.cache.PutSegmentPlan(s.ctx, key, opts, plan); err != nil {
				s.logger.Debug("segment plan cache store failed", logging.Error(err))
			}
		}
	}
	return plan, nil
}

func (s *run) exportSegments(path, outDir string, result *ShuffleResult, plan []segments.Segment) error {
	removed, err := segments.RemoveExisting(outDir, result.Base)
	if err != nil {
		return err
	}
	result.Stale = removed
	decoded, err := s.load(path)
	if err != nil {
		return err
	}
	_, err = segments.Export(decoded, plan, outDir, result.Base)
	return err
}

// cleanOrphans removes segment files left by shuffle sources that are gone.
func (s *run) cleanOrphans(shuffle []string) {
	keep := make(map[string]struct{}, len(shuffle))
	for _, path := range shuffle {
		keep[naming.Slug(filepath.Base(path))] = struct{}{}
	}
	orphans, err := segments.Orphans(s.cfg.Paths.SegmentsDir, keep)
	if err != nil {
		s.logger.Debug("orphan segment scan failed", logging.Error(err))
		return
	}
	for _, path := range orphans {
		s.report.OrphanSegments = append(s.report.OrphanSegments, filepath.Base(path))
		if s.opts.DryRun {
			continue
		}
		if err := removeFile(path); err != nil {
			logging.WarnWithContext(s.logger, "could not remove orphaned segment", "segment_cleanup_failed",
				logging.String(logging.FieldFile, filepath.Base(path)),
				logging.Error(err),
				logging.String(logging.FieldImpact, "stale segment file stays on disk"),
			)
		}
	}
	if len(orphans) > 0 {
		s.logger.Info("orphaned segments", logging.Int("count", len(orphans)), logging.Bool("dry_run", s.opts.DryRun))
	}
}

// refreshDerived recomputes waveform for every entry and segments for
// shuffle entries. A file that cannot be decoded keeps its previous waveform.
func (s *run) refreshDerived(entries []manifest.Entry, segmentStems map[string][]string) {
	bars := s.cfg.Sounds.WaveformBars
	for i := range entries {
		entry := &entries[i]
		dir := s.cfg.Paths.SoundsDir
		if entry.IsShuffle {
			dir = s.cfg.Paths.ShuffleDir
			if stems, ok := segmentStems[entry.FileName()]; ok {
				entry.Segments = slices.Clone(stems)
			}
		}
		values, err := s.waveformFor(filepath.Join(dir, entry.FileName()), bars)
		if err != nil {
			s.report.WaveformErrors = append(s.report.WaveformErrors, entry.FileName())
			logging.WarnWithContext(s.logger, "waveform not computed", "waveform_failed",
				logging.String(logging.FieldFile, entry.FileName()),
				logging.Error(err),
				logging.String(logging.FieldImpact, "previous waveform kept"),
				logging.String(logging.FieldErrorHint, "install ffmpeg/ffprobe for non-WAV formats"),
			)
			continue
		}
		entry.Waveform = values
	}
}

func (s *run) waveformFor(path string, bars int) ([]float64, error) {
	var key analysiscache.Key
	if s.cache != nil {
		var err error
		if key, err = analysiscache.KeyFor(path); err == nil {
			if values, ok, err := s.cache.Waveform(s.ctx, key, bars); err == nil && ok {
				return values, nil
			}
		}
	}
	decoded, err := s.load(path)
	if err != nil {
		return nil, err
	}
	values := waveform.Compute(decoded.Samples, bars)
	if s.cache != nil && key.Path != "" {
		if err := s.cache.PutWaveform(s.ctx, key, bars, values); err != nil {
			s.logger.Debug("waveform cache store failed", logging.Error(err))
		}
	}
	return values, nil
}
