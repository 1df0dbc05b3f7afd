package segments

import (
	"math"

	"pattiprep/internal/media/pcm"
)

// Range is a half-open span of audio in milliseconds.
type Range struct {
	StartMs int `json:"start_ms"`
	EndMs   int `json:"end_ms"`
}

// DurationMs returns the length of the range.
func (r Range) DurationMs() int {
	return r.EndMs - r.StartMs
}

// DBToRatio converts a dBFS value to a linear ratio of full scale.
func DBToRatio(db float64) float64 {
	return math.Pow(10, db/20)
}

// DetectSilence returns the merged silent ranges of a. Audio shorter than
// minSilenceMs has no silence.
func DetectSilence(a pcm.Audio, minSilenceMs int, threshDB float64) []Range {
	length := a.DurationMs()
	if minSilenceMs <= 0 || length < minSilenceMs {
		return nil
	}
	threshold := DBToRatio(threshDB) * a.MaxAmplitude()

	var starts []int
	window := newRMSWindow(a)
	for i := 0; i <= length-minSilenceMs; i++ {
		if window.rms(i, i+minSilenceMs) <= threshold {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		return nil
	}

	var ranges []Range
	prev := starts[0]
	rangeStart := prev
	for _, start := range starts[1:] {
		continuous := start == prev+1
		hasGap := start > prev+minSilenceMs
		if !continuous && hasGap {
			ranges = append(ranges, Range{StartMs: rangeStart, EndMs: prev + minSilenceMs})
			rangeStart = start
		}
		prev = start
	}
	return append(ranges, Range{StartMs: rangeStart, EndMs: prev + minSilenceMs})
}

// DetectNonSilent returns the ranges between silences. Audio without any
// silence is one range covering everything; fully silent audio has none.
func DetectNonSilent(a pcm.Audio, minSilenceMs int, threshDB float64) []Range {
	length := a.DurationMs()
	silent := DetectSilence(a, minSilenceMs, threshDB)
	if len(silent) == 0 {
		return []Range{{StartMs: 0, EndMs: length}}
	}
	if silent[0].StartMs == 0 && silent[0].EndMs == length {
		return nil
	}

	ranges := make([]Range, 0, len(silent)+1)
	prevEnd := 0
	for _, r := range silent {
		ranges = append(ranges, Range{StartMs: prevEnd, EndMs: r.StartMs})
		prevEnd = r.EndMs
	}
	if last := silent[len(silent)-1]; last.EndMs != length {
		ranges = append(ranges, Range{StartMs: prevEnd, EndMs: length})
	}
	if ranges[0].StartMs == 0 && ranges[0].EndMs == 0 {
		ranges = ranges[1:]
	}
	return ranges
}

// rmsWindow tracks the sum of squares over a window that only moves forward.
// Sums are float64; for 16-bit audio they stay exact integers.
type rmsWindow struct {
	audio      pcm.Audio
	startFrame int
	endFrame   int
	sum        float64
}

func newRMSWindow(a pcm.Audio) *rmsWindow {
	return &rmsWindow{audio: a}
}

func (w *rmsWindow) frameSquares(frame int) float64 {
	var sum float64
	for _, s := range w.audio.Window(frame, 1) {
		v := float64(s)
		sum += v * v
	}
	return sum
}

// rms returns the truncated RMS of the samples between two millisecond offsets.
func (w *rmsWindow) rms(startMs, endMs int) float64 {
	start := w.audio.FrameAt(startMs)
	end := w.audio.FrameAt(endMs)
	for w.endFrame < end {
		w.sum += w.frameSquares(w.endFrame)
		w.endFrame++
	}
	for w.startFrame < start {
		w.sum -= w.frameSquares(w.startFrame)
		w.startFrame++
	}
	frames := w.endFrame - w.startFrame
	if frames <= 0 {
		return 0
	}
	mean := w.sum / float64(frames*w.audio.Channels)
	if mean < 0 {
		mean = 0
	}
	return math.Floor(math.Sqrt(mean))
}
