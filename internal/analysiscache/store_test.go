package analysiscache_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pattiprep/internal/analysiscache"
	"pattiprep/internal/segments"
	"pattiprep/internal/testsupport"
)

func openStore(t *testing.T) (*analysiscache.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := analysiscache.Open(context.Background(), filepath.Join(dir, "cache", "analysis.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, dir
}

func TestWaveformRoundTripAndInvalidation(t *testing.T) {
	store, dir := openStore(t)
	ctx := context.Background()
	path := filepath.Join(dir, "toot.wav")
	testsupport.WriteFile(t, path, 16)

	key, err := analysiscache.KeyFor(path)
	if err != nil {
		t.Fatalf("KeyFor: %v", err)
	}
	if _, ok, err := store.Waveform(ctx, key, 25); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	want := []float64{0.5, 1, 0.25}
	if err := store.PutWaveform(ctx, key, 25, want); err != nil {
		t.Fatalf("PutWaveform: %v", err)
	}
	got, ok, err := store.Waveform(ctx, key, 25)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 3 || got[1] != 1 || got[2] != 0.25 {
		t.Fatalf("unexpected values %v", got)
	}
	if _, ok, _ := store.Waveform(ctx, key, 10); ok {
		t.Fatal("different bar count should miss")
	}

	changed := key
	changed.Size++
	if _, ok, _ := store.Waveform(ctx, changed, 25); ok {
		t.Fatal("size change should invalidate")
	}
	if err := store.PutWaveform(ctx, changed, 25, []float64{1}); err != nil {
		t.Fatalf("PutWaveform overwrite: %v", err)
	}
	if _, ok, _ := store.Waveform(ctx, key, 25); ok {
		t.Fatal("overwritten row should not match the old key")
	}
}

func TestSegmentPlanRoundTrip(t *testing.T) {
	store, dir := openStore(t)
	ctx := context.Background()
	key := analysiscache.Key{Path: filepath.Join(dir, "shuffle", "triple.wav"), Size: 100, ModTime: 42}
	opts := segments.DefaultOptions()
	plan := []segments.Segment{
		{Index: 0, Range: segments.Range{StartMs: 0, EndMs: 350}},
		{Index: 2, Range: segments.Range{StartMs: 750, EndMs: 1250}},
	}
	if err := store.PutSegmentPlan(ctx, key, opts, plan); err != nil {
		t.Fatalf("PutSegmentPlan: %v", err)
	}
	got, ok, err := store.SegmentPlan(ctx, key, opts)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if len(got) != 2 || got[1].Index != 2 || got[1].Range.EndMs != 1250 {
		t.Fatalf("unexpected plan %+v", got)
	}

	tighter := opts
	tighter.PaddingMs = 0
	if _, ok, _ := store.SegmentPlan(ctx, key, tighter); ok {
		t.Fatal("different options should miss")
	}

	if err := store.PutSegmentPlan(ctx, key, tighter, nil); err != nil {
		t.Fatalf("PutSegmentPlan empty: %v", err)
	}
	empty, ok, err := store.SegmentPlan(ctx, key, tighter)
	if err != nil || !ok || len(empty) != 0 {
		t.Fatalf("empty plan should be a hit, got %v ok=%v err=%v", empty, ok, err)
	}
}

func TestStatsClearAndPrune(t *testing.T) {
	store, dir := openStore(t)
	ctx := context.Background()

	kept := filepath.Join(dir, "kept.wav")
	testsupport.WriteFile(t, kept, 8)
	keptKey, err := analysiscache.KeyFor(kept)
	if err != nil {
		t.Fatal(err)
	}
	gone := analysiscache.Key{Path: filepath.Join(dir, "gone.wav"), Size: 1, ModTime: 1}

	for _, key := range []analysiscache.Key{keptKey, gone} {
		if err := store.PutWaveform(ctx, key, 25, []float64{1}); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.PutSegmentPlan(ctx, gone, segments.DefaultOptions(), nil); err != nil {
		t.Fatal(err)
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Waveforms != 2 || stats.SegmentPlans != 1 || stats.Path != store.Path() {
		t.Fatalf("unexpected stats %+v", stats)
	}

	pruned, err := store.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if pruned != 2 {
		t.Fatalf("expected 2 pruned rows, got %d", pruned)
	}
	if _, ok, _ := store.Waveform(ctx, keptKey, 25); !ok {
		t.Fatal("existing file should survive prune")
	}

	cleared, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if cleared != 1 {
		t.Fatalf("expected 1 cleared row, got %d", cleared)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	store, _ := openStore(t)
	dbPath := store.Path()
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("db missing: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := analysiscache.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := analysiscache.SetSchemaVersionForTest(reopened, 99); err != nil {
		t.Fatal(err)
	}
	_ = reopened.Close()

	_, err = analysiscache.Open(context.Background(), dbPath)
	if !errors.Is(err, analysiscache.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
