// Package main hosts the pattiprep CLI entrypoint and command graph.
//
// Each asset job (frames, icon, sounds) is a thin command over its internal
// package: the command loads configuration, builds a logger tagged with a
// fresh run id, calls the job runner, and renders the returned summary as a
// table or JSON. Logs go to stderr so stdout carries only reports.
//
// Add behaviour to the internal packages first and surface it here through
// flags; commands should stay declarative.
package main
