package workspacefinder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nick-merrill/life-expectancy/internal/domain"
)

func TestFindRoot_FindsWorkspaceFromNestedDir(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "ws")
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	// Create lifex.yaml at root
	if err := os.WriteFile(filepath.Join(root, "lifex.yaml"), []byte("lifex:\n  defaults:\n    min_age: 37\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	f := NewFinder()
	got, err := f.FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot returned error: %v", err)
	}
	if got != root {
		t.Fatalf("expected root=%s, got=%s", root, got)
	}
}

func TestFindRoot_AcceptsFilePath(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "lifex.yaml"), []byte("lifex: {}\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	table := filepath.Join(root, "table.csv")
	if err := os.WriteFile(table, []byte("age,qx,lx\n"), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}

	f := NewFinder()
	got, err := f.FindRoot(table)
	if err != nil {
		t.Fatalf("FindRoot returned error: %v", err)
	}
	if got != root {
		t.Fatalf("expected root=%s, got=%s", root, got)
	}
}

func TestFindRoot_NotFound(t *testing.T) {
	tmp := t.TempDir()
	_ = os.MkdirAll(filepath.Join(tmp, "a", "b"), 0o755)

	f := NewFinder()
	_, err := f.FindRoot(filepath.Join(tmp, "a", "b"))
	if err == nil {
		t.Fatalf("expected error")
	}

	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected KindNotFound, got: %v", err)
	}
}
