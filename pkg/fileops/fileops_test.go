package fileops

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createTestFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", path, err)
	}
	return path
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()

	t.Run("creates file and parents", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "config.yaml")
		if err := WriteFileAtomic(path, []byte("version: \"1\"\n"), 0o600); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading result: %v", err)
		}
		if string(got) != "version: \"1\"\n" {
			t.Errorf("content = %q", got)
		}

		info, _ := os.Stat(path)
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("permissions = %o, want 600", perm)
		}
	})

	t.Run("replaces existing file", func(t *testing.T) {
		path := createTestFile(t, dir, "existing.yaml", "old")
		if err := WriteFileAtomic(path, []byte("new"), 0o644); err != nil {
			t.Fatalf("WriteFileAtomic failed: %v", err)
		}
		got, _ := os.ReadFile(path)
		if string(got) != "new" {
			t.Errorf("content = %q, want new", got)
		}
	})

	t.Run("leaves no temporary files", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if strings.HasSuffix(e.Name(), ".tmp") {
				t.Errorf("temporary file left behind: %s", e.Name())
			}
		}
	})

	t.Run("fails when target is a directory", func(t *testing.T) {
		target := filepath.Join(dir, "adir")
		if err := os.MkdirAll(filepath.Join(target, "child"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := WriteFileAtomic(target, []byte("x"), 0o644); err == nil {
			t.Error("expected error when renaming over a non-empty directory")
		}
	})
}

func TestReadFileLimited(t *testing.T) {
	dir := t.TempDir()
	small := createTestFile(t, dir, "small.txt", "hello")

	tests := []struct {
		name     string
		path     string
		max      int64
		want     string
		wantErr  bool
		tooLarge bool
	}{
		{name: "within limit", path: small, max: 5, want: "hello"},
		{name: "over limit", path: small, max: 4, wantErr: true, tooLarge: true},
		{name: "missing file", path: filepath.Join(dir, "missing.txt"), max: 10, wantErr: true},
		{name: "directory", path: dir, max: 10, wantErr: true},
		{name: "invalid limit", path: small, max: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadFileLimited(tt.path, tt.max)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if tt.tooLarge && !errors.Is(err, ErrTooLarge) {
					t.Errorf("error = %v, want ErrTooLarge", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadLimited(t *testing.T) {
	got, err := ReadLimited(strings.NewReader("abc"), 3)
	if err != nil || string(got) != "abc" {
		t.Errorf("ReadLimited() = %q, %v", got, err)
	}

	if _, err := ReadLimited(strings.NewReader("abcd"), 3); !errors.Is(err, ErrTooLarge) {
		t.Errorf("ReadLimited() error = %v, want ErrTooLarge", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExpandPath("~/notes.md"); got != filepath.Join(home, "notes.md") {
		t.Errorf("ExpandPath(~/notes.md) = %q", got)
	}
	if got := ExpandPath("/tmp/notes.md"); got != "/tmp/notes.md" {
		t.Errorf("ExpandPath(/tmp/notes.md) = %q", got)
	}
	if got := ExpandPath("~user/notes.md"); got != "~user/notes.md" {
		t.Errorf("ExpandPath(~user/notes.md) = %q", got)
	}
}
