// Package manifest reads, reconciles, and writes sounds-manifest.json.
//
// The manifest is a JSON array of entries keyed by their backing file name.
// Reconcile carries user edits (names, categories, unknown fields) forward,
// generates entries for new files, and drops entries whose file is gone, so
// running it twice over an unchanged directory produces identical bytes.
package manifest
