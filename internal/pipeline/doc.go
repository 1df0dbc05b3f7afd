// Package pipeline holds the error markers and context annotations shared by
// the frames, icon, and sounds jobs.
//
// Jobs wrap failures with Wrap so the CLI can classify them with errors.Is and
// print a matching hint, and they carry the run identifier and job name on the
// context so log lines can be correlated across one invocation.
package pipeline
