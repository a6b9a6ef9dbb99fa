package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirWritableCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cfg")
	if !DirWritable(dir) {
		t.Fatalf("DirWritable(%s) = false, want true", dir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("directory was not created: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("write check left %d files behind", len(entries))
	}
}

func TestGetAbsolutePath(t *testing.T) {
	if got := GetAbsolutePath(""); got != "unknown" {
		t.Errorf("GetAbsolutePath(\"\") = %q, want unknown", got)
	}
	got := GetAbsolutePath("config.toml")
	if !filepath.IsAbs(got) {
		t.Errorf("GetAbsolutePath(config.toml) = %q, want an absolute path", got)
	}
	abs := filepath.Join(t.TempDir(), "config.toml")
	if got := GetAbsolutePath(abs); got != abs {
		t.Errorf("GetAbsolutePath(%q) = %q, want unchanged", abs, got)
	}
}
