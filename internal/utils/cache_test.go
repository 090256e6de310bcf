package utils

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestFileCache_BasicOperations(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Service.cs")
	writeFile(t, path, "class Service {}")

	cache := NewFileCache[int]()
	if _, ok := cache.Get(path); ok {
		t.Error("expected empty cache to miss")
	}

	if err := cache.Set(path, 42); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value, ok := cache.Get(path)
	if !ok || value != 42 {
		t.Errorf("expected cached 42, got %d (ok=%v)", value, ok)
	}

	cache.Delete(path)
	if _, ok := cache.Get(path); ok {
		t.Error("expected deleted entry to miss")
	}
}

func TestFileCache_InvalidatesOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Service.cs")
	writeFile(t, path, "class Service {}")

	cache := NewFileCache[string]()
	if err := cache.Set(path, "parsed"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// different size and a later mtime
	writeFile(t, path, "class Service { void Run() {} }")
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	if _, ok := cache.Get(path); ok {
		t.Error("expected modified file to invalidate the entry")
	}
	if cache.Size() != 0 {
		t.Errorf("expected stale entry to be evicted, size %d", cache.Size())
	}
}

func TestFileCache_RemovedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Gone.cs")
	writeFile(t, path, "class Gone {}")

	cache := NewFileCache[string]()
	if err := cache.Set(path, "parsed"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := cache.Get(path); ok {
		t.Error("expected removed file to miss")
	}
}

func TestFileCache_SetMissingFile(t *testing.T) {
	cache := NewFileCache[string]()
	if err := cache.Set(filepath.Join(t.TempDir(), "missing.cs"), "x"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFileCache_Stats(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "A.cs")
	writeFile(t, path, "class A {}")

	cache := NewFileCache[int]()
	cache.Get(path)
	_ = cache.Set(path, 1)
	cache.Get(path)
	cache.Get(path)

	stats := cache.GetStats()
	if stats.Size != 1 || stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("expected size 0 after clear, got %d", cache.Size())
	}
}

func TestFileCache_Concurrency(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "A.cs")
	writeFile(t, path, "class A {}")

	cache := NewFileCache[int]()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = cache.Set(path, n)
			cache.Get(path)
		}(i)
	}
	wg.Wait()

	if cache.Size() != 1 {
		t.Errorf("expected one entry, got %d", cache.Size())
	}
}
