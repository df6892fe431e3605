package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRemoveAssetsDeletesListedFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.png")
	b := writeFile(t, dir, "sub/b.png")

	m := NewManager(dir)
	if err := m.RemoveAssets(context.Background(), "a.png; sub/b.png"); err != nil {
		t.Fatalf("RemoveAssets: %v", err)
	}

	for _, path := range []string{a, b} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("%s still exists", path)
		}
	}
}

func TestRemoveAssetsToleratesMissingFiles(t *testing.T) {
	m := NewManager(t.TempDir())
	if err := m.RemoveAssets(context.Background(), "gone.png"); err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
}

func TestRemoveAssetsSkipsNoneSentinel(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	if err := m.RemoveAssets(context.Background(), "none"); err != nil {
		t.Fatalf("none sentinel: %v", err)
	}
}

func TestRemoveAssetsSkipsAbsolutePaths(t *testing.T) {
	dir := t.TempDir()
	outside := writeFile(t, t.TempDir(), "outside.png")

	m := NewManager(dir)
	if err := m.RemoveAssets(context.Background(), outside); err != nil {
		t.Fatalf("RemoveAssets: %v", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("absolute path was removed: %v", err)
	}
}

func TestRemoveAssetsSkipsTraversalPaths(t *testing.T) {
	root := t.TempDir()
	imageDir := filepath.Join(root, "images")
	if err := os.MkdirAll(imageDir, 0o755); err != nil {
		t.Fatal(err)
	}
	secret := writeFile(t, root, "secret.txt")
	inside := writeFile(t, imageDir, "a.png")

	m := NewManager(imageDir)
	if err := m.RemoveAssets(context.Background(), "../secret.txt; sub/../../secret.txt; a.png"); err != nil {
		t.Fatalf("RemoveAssets: %v", err)
	}

	if _, err := os.Stat(secret); err != nil {
		t.Errorf("file outside the image directory was removed: %v", err)
	}
	if _, err := os.Stat(inside); !os.IsNotExist(err) {
		t.Errorf("%s still exists", inside)
	}
}

func TestRemoveAssetsNormalizesBackslashes(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "sub/c.png")

	m := NewManager(dir)
	if err := m.RemoveAssets(context.Background(), `sub\c.png`); err != nil {
		t.Fatalf("RemoveAssets: %v", err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Errorf("%s still exists", target)
	}
}
