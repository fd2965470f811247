package library

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ivlev/carousel/internal/element"
	"github.com/ivlev/carousel/internal/geometry"
	"github.com/ivlev/carousel/internal/store"
)

func openLibrary(t *testing.T) *Library {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "db", "library.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func project(t *testing.T, aspect string, count int) store.Project {
	t.Helper()
	s, err := store.New(geometry.AspectRatio(aspect), count)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddElement(s.Slides()[0].ID, element.Header); err != nil {
		t.Fatal(err)
	}
	return s.Project()
}

func TestSaveLoad(t *testing.T) {
	l := openLibrary(t)
	ctx := context.Background()
	p := project(t, "4:5", 5)

	if err := l.Save(ctx, "spring", p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := l.Load(ctx, "spring")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(p, got) {
		t.Error("loaded project differs from saved")
	}

	// saving again replaces
	q := project(t, "16:9", 3)
	if err := l.Save(ctx, "spring", q); err != nil {
		t.Fatal(err)
	}
	got, _ = l.Load(ctx, "spring")
	if got.AspectRatio != "16:9" || len(got.Slides) != 3 {
		t.Errorf("expected replaced project, got %s/%d", got.AspectRatio, len(got.Slides))
	}

	if _, err := l.Load(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListDelete(t *testing.T) {
	l := openLibrary(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if err := l.Save(ctx, name, project(t, "1:1", 4)); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	entries, err := l.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 3 || entries[0].Name != "c" || entries[2].Name != "a" {
		t.Fatalf("expected newest first, got %+v", entries)
	}
	if entries[0].SlideCount != 4 || entries[0].AspectRatio != "1:1" {
		t.Errorf("unexpected summary %+v", entries[0])
	}

	if err := l.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := l.Delete(ctx, "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	entries, _ = l.List(ctx)
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	l := openLibrary(t)
	p := project(t, "1:1", 3)
	p.Slides = p.Slides[:1]

	if err := l.Save(context.Background(), "broken", p); err == nil {
		t.Error("expected validation error")
	}
	if err := l.Save(context.Background(), "", project(t, "1:1", 3)); err == nil {
		t.Error("expected error for empty name")
	}
}
