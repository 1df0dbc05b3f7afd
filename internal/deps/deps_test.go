package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	writeStub(t, present)
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary", Optional: true},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" || results[0].Resolved != present {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" || !results[1].Optional {
		t.Fatalf("expected missing optional binary, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" || results[1].Resolved != "" {
		t.Fatalf("unexpected command recorded: %+v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("expected blank command to be reported, got %#v", results[2])
	}

	missing := MissingRequired(results)
	if len(missing) != 1 || missing[0].Name != "Blank" {
		t.Fatalf("expected only the required blank command to be missing, got %+v", missing)
	}
}

func TestResolveFFprobeUsesSidecar(t *testing.T) {
	tmp := t.TempDir()
	ffmpegPath := filepath.Join(tmp, executableName("ffmpeg"))
	ffprobePath := filepath.Join(tmp, executableName("ffprobe"))
	writeStub(t, ffmpegPath)
	writeStub(t, ffprobePath)
	t.Setenv("PATH", t.TempDir())

	if got := ResolveFFprobe(ffmpegPath, ""); got != ffprobePath {
		t.Fatalf("expected sidecar %q, got %q", ffprobePath, got)
	}
	if got := ResolveFFprobe(ffmpegPath, "/opt/custom/ffprobe"); got != "/opt/custom/ffprobe" {
		t.Fatalf("explicit ffprobe should win, got %q", got)
	}
	if got := ResolveFFprobe("missing-ffmpeg", "ffprobe"); got != "ffprobe" {
		t.Fatalf("expected bare default, got %q", got)
	}
}
