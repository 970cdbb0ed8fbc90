package infra

import (
	"context"
	"io"
	"strings"
	"testing"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	ctx := context.Background()

	locator, err := s.Save(ctx, "media-1-abc.mp4", strings.NewReader("payload"), 7, "video/mp4")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if locator != "/uploads/media/media-1-abc.mp4" {
		t.Fatalf("unexpected locator: %s", locator)
	}

	rc, err := s.Open(ctx, locator)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != "payload" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestLocalStorageRefusesOverwrite(t *testing.T) {
	s, _ := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	if _, err := s.Save(ctx, "same.mp3", strings.NewReader("a"), 1, "audio/mpeg"); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if _, err := s.Save(ctx, "same.mp3", strings.NewReader("b"), 1, "audio/mpeg"); err == nil {
		t.Fatal("expected error when name already exists")
	}
}

func TestLocalStorageStaysInDir(t *testing.T) {
	s, _ := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	locator, err := s.Save(ctx, "../../escape.mp4", strings.NewReader("x"), 1, "video/mp4")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if locator != "/uploads/media/escape.mp4" {
		t.Fatalf("path not flattened: %s", locator)
	}

	if _, err := s.Open(ctx, "/uploads/media/../../etc/passwd"); err == nil {
		t.Fatal("expected error opening a file outside the dir")
	}
}

func TestLocalStorageMissingFile(t *testing.T) {
	s, _ := NewLocalStorage(t.TempDir())

	if _, err := s.Open(context.Background(), "/uploads/media/nope.mp4"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
