// Package preflight provides readiness checks for the external binaries and
// asset directories pattiprep depends on.
//
// The CLI "pattiprep doctor" command runs every check and prints a table.
// Source directories need read access; output directories need write access
// to their nearest existing ancestor, since jobs create them on demand.
package preflight
