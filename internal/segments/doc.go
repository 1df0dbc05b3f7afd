// Package segments splits multi-event recordings at silence boundaries.
//
// Detection slides a window of the minimum silence length across the audio in
// one millisecond steps and marks a window silent when its RMS, taken over all
// channels, is at or below the threshold relative to full scale. Consecutive
// silent windows merge into silent ranges; the gaps between them are the
// non-silent ranges. Split pads each range, drops the short ones, and writes
// the rest as shuffle_<base>_NN.wav.
package segments
