// Package frames turns animated GIFs into per-frame PNG sequences plus the
// JSON manifest the app's frame animator reads.
//
// Each GIF frame is composited with its disposal method honoured, flattened
// onto an opaque white canvas, converted to luminance, resized with Lanczos
// resampling, and then either turned into black line art whose alpha follows
// the inverted luminance (outline mode) or kept as plain grayscale (template
// mode).
package frames
