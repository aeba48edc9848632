package filestore_test

import (
	"io"
	"strings"
	"testing"

	"github.com/Istiyaq-Khan/exam-track-pro/internal/app/system/filestore"
)

func TestSaveAndOpen(t *testing.T) {
	fs, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	rel, n, err := fs.Save("books", "algebra 9th.pdf", strings.NewReader("%PDF-1.4 test"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if n != int64(len("%PDF-1.4 test")) {
		t.Errorf("bytes written: got %d", n)
	}
	if !strings.HasPrefix(rel, "books/") {
		t.Errorf("path should be under books/, got %q", rel)
	}
	if strings.Contains(rel, " ") {
		t.Errorf("path should not contain spaces, got %q", rel)
	}

	f, err := fs.Open(rel)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer f.Close()
	body, _ := io.ReadAll(f)
	if string(body) != "%PDF-1.4 test" {
		t.Errorf("content: got %q", body)
	}
}

func TestRemove(t *testing.T) {
	fs, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	rel, _, err := fs.Save("covers", "cover.png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := fs.Remove(rel); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	// Removing again is not an error.
	if err := fs.Remove(rel); err != nil {
		t.Errorf("second Remove: %v", err)
	}
	if _, err := fs.Open(rel); err == nil {
		t.Error("expected Open to fail after Remove")
	}
}

func TestOpen_RejectsTraversal(t *testing.T) {
	fs, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := fs.Open("../etc/passwd"); err == nil {
		t.Error("expected traversal path to be rejected")
	}
	if _, err := fs.Open("/etc/passwd"); err == nil {
		t.Error("expected absolute path to be rejected")
	}
}
