package telemetry

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "coop.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	if err := NewSQLiteStore("").Init(context.Background()); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestSQLiteStoreUninitialized(t *testing.T) {
	store := NewSQLiteStore("unused.db")
	if err := store.WriteWindow(context.Background(), WindowStats{}); err == nil {
		t.Fatal("expected error writing before init")
	}
}

func TestSQLiteStoreWindows(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i, eaten := range []int{3, 7, 11} {
		ws := WindowStats{
			RunID:         "run-a",
			WindowEndTick: int32((i + 1) * 600),
			SimTimeSec:    float64(i+1) * 10,
			Agents:        24,
			SeedsEaten:    eaten,
			SpeedP90:      123.5,
		}
		if err := store.WriteWindow(ctx, ws); err != nil {
			t.Fatalf("write window %d: %v", i, err)
		}
	}
	if err := store.WriteWindow(ctx, WindowStats{RunID: "run-b", WindowEndTick: 600}); err != nil {
		t.Fatalf("write other run: %v", err)
	}

	got, err := store.Windows(ctx, "run-a")
	if err != nil {
		t.Fatalf("windows: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d windows, want 3", len(got))
	}
	if got[2].SeedsEaten != 11 || got[2].SpeedP90 != 123.5 {
		t.Errorf("last window = %+v", got[2])
	}

	// Same key replaces the row
	if err := store.WriteWindow(ctx, WindowStats{RunID: "run-a", WindowEndTick: 600, SeedsEaten: 42}); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	got, err = store.Windows(ctx, "run-a")
	if err != nil {
		t.Fatalf("windows: %v", err)
	}
	if len(got) != 3 || got[0].SeedsEaten != 42 {
		t.Errorf("after rewrite: %d windows, first eaten %d", len(got), got[0].SeedsEaten)
	}
}

func TestSQLiteStoreBookmarks(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	marks := []Bookmark{
		{RunID: "run-a", Type: BookmarkCoopRush, Tick: 1200, Description: "rush"},
		{RunID: "run-a", Type: BookmarkMassPanic, Tick: 600, Description: "panic"},
	}
	for _, b := range marks {
		if err := store.WriteBookmark(ctx, b); err != nil {
			t.Fatalf("write bookmark: %v", err)
		}
	}

	got, err := store.Bookmarks(ctx, "run-a")
	if err != nil {
		t.Fatalf("bookmarks: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d bookmarks, want 2", len(got))
	}
	if got[0].Type != BookmarkMassPanic || got[1].Type != BookmarkCoopRush {
		t.Errorf("bookmarks out of tick order: %v, %v", got[0].Type, got[1].Type)
	}
}
