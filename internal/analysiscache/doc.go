// Package analysiscache persists audio analysis results in SQLite so repeat
// sound runs skip decoding files that have not changed.
//
// Rows are keyed by absolute path and validated against the file's size and
// modification time; a mismatch is treated as a miss. Two kinds of result are
// stored: waveform bars (per bar count) and shuffle segment plans (per
// segmentation options). The database carries a schema_version row; a
// mismatch asks the operator to run `pattiprep cache clear`.
package analysiscache
