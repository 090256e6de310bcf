package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_RegeneratesOnChange(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "UserService.cs")
	write(t, src, userService)

	gen, _ := testGenerator(t, dir, func(c *Config) { c.Watch.Debounce = 20 * time.Millisecond })

	var (
		mu   sync.Mutex
		runs []GenerationSummary
	)
	w := NewWatcher(gen, []string{dir + "/..."})
	w.OnRun = func(summary GenerationSummary, err error) {
		assert.NoError(t, err)
		mu.Lock()
		runs = append(runs, summary)
		mu.Unlock()
	}
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(runs)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	out := filepath.Join(dir, "IUserService.g.cs")
	require.Eventually(t, func() bool { return count() >= 1 }, 5*time.Second, 10*time.Millisecond)
	assert.FileExists(t, out)

	write(t, src, strings.Replace(userService, "public void Save(int id)", "public void Save(long id)", 1))
	require.Eventually(t, func() bool {
		content, err := os.ReadFile(out)
		return err == nil && strings.Contains(string(content), "void Save(long id);")
	}, 5*time.Second, 10*time.Millisecond)

	// sources in directories created after start are picked up too
	write(t, filepath.Join(dir, "Orders", "OrderService.cs"), `[AutoInterface] public class OrderService { public void Ship() { } }`)
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "Orders", "IOrderService.g.cs"))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_Relevant(t *testing.T) {
	gen, _ := testGenerator(t, t.TempDir())
	w := NewWatcher(gen, []string{"./..."})

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"source write", fsnotify.Event{Name: "/src/A.cs", Op: fsnotify.Write}, true},
		{"manifest create", fsnotify.Event{Name: "/src/api.autoiface.yaml", Op: fsnotify.Create}, true},
		{"source removed", fsnotify.Event{Name: "/src/A.cs", Op: fsnotify.Remove}, true},
		{"generated output", fsnotify.Event{Name: "/src/IA.g.cs", Op: fsnotify.Write}, false},
		{"chmod only", fsnotify.Event{Name: "/src/A.cs", Op: fsnotify.Chmod}, false},
		{"other file", fsnotify.Event{Name: "/src/readme.md", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.relevant(tt.event))
		})
	}

	assert.True(t, w.recursive())
	assert.False(t, NewWatcher(gen, []string{"./src"}).recursive())
}
