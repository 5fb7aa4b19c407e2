package modloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLocalModule(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "greet.go"), []byte("package main\nvar Greeting = \"hi\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	l, err := New(dir, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	ctx := context.Background()
	if _, err := l.Load(ctx, "/greet.go", ""); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoadCachesByNormalizedPath(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.go"), []byte("package main\nvar X = 1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	l, err := New(dir, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	ctx := context.Background()
	if _, err := l.Load(ctx, "a.go", ""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := l.Load(ctx, "./a.go", ""); err != nil {
		t.Fatalf("Load second form: %v", err)
	}
	if len(l.cache) != 1 {
		t.Fatalf("cache has %d entries; want 1 (normalized paths should collapse)", len(l.cache))
	}
}

func TestNormalizeRejectsEscape(t *testing.T) {
	if _, err := Normalize("../../etc/passwd"); err == nil {
		t.Fatalf("Normalize accepted an escaping path")
	}
}

func TestLoadSUNModuleFetchesViaCallback(t *testing.T) {
	var gotPath string
	l, err := New(t.TempDir(), func(ctx context.Context, p string) (string, error) {
		gotPath = p
		return "package main\nvar X = 1\n", nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	if _, err := l.Load(context.Background(), "sun:/apps/widget.go", ""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if gotPath != "/apps/widget.go" {
		t.Fatalf("fetch called with %q; want /apps/widget.go", gotPath)
	}
}

func TestLoadDetectsCircularDependency(t *testing.T) {
	fetch := func(ctx context.Context, p string) (string, error) {
		switch p {
		case "/a":
			return "", nil // overridden below via closures
		}
		return "", nil
	}
	_ = fetch

	// Simulate the mutual-import scenario directly against the dependency
	// stack rather than via two real SUN modules, since Load's recursion
	// into imports is driven by the interpreted code itself (outside this
	// package's control) rather than by modloader.
	l, err := New(t.TempDir(), func(ctx context.Context, p string) (string, error) {
		return "package main\n", nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	l.mu.Lock()
	l.stack = []string{"/a", "/b"}
	l.onStack["/a"] = true
	l.onStack["/b"] = true
	l.mu.Unlock()

	_, err = l.Load(context.Background(), "/a", "/b")
	if err == nil {
		t.Fatalf("Load did not report the circular dependency")
	}
}

func TestLoadFailurePoisonsNothing(t *testing.T) {
	l, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer l.Close()

	ctx := context.Background()
	if _, err := l.Load(ctx, "/missing.go", ""); err == nil {
		t.Fatalf("Load of a nonexistent local path should fail")
	}
	if _, ok := l.cache["/missing.go"]; ok {
		t.Fatalf("failed load left a cache entry behind")
	}
	// Retrying after the failure should not report a stale circular
	// dependency or a poisoned cache hit.
	if _, err := l.Load(ctx, "/missing.go", ""); err == nil {
		t.Fatalf("second Load of a still-missing path should also fail")
	}
}
