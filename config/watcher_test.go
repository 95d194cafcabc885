package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestNewWatcher(t *testing.T) {
	loader := NewLoader()

	t.Run("valid config path", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("app:\n  name: test\n"), 0644); err != nil {
			t.Fatalf("failed to create temp config: %v", err)
		}

		watcher, err := NewWatcher(configPath, loader)
		if err != nil {
			t.Fatalf("NewWatcher failed: %v", err)
		}
		defer watcher.Stop()

		if watcher.ConfigPath() != configPath {
			t.Errorf("expected config path %s, got %s", configPath, watcher.ConfigPath())
		}
	})

	t.Run("empty config path", func(t *testing.T) {
		_, err := NewWatcher("", loader)
		if err == nil {
			t.Fatal("expected error for empty config path")
		}
	})

	t.Run("with debounce option", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("app:\n  name: test\n"), 0644); err != nil {
			t.Fatalf("failed to create temp config: %v", err)
		}

		watcher, err := NewWatcher(configPath, loader, WithDebounce(100*time.Millisecond))
		if err != nil {
			t.Fatalf("NewWatcher failed: %v", err)
		}
		defer watcher.Stop()

		if watcher.debounce != 100*time.Millisecond {
			t.Errorf("expected debounce 100ms, got %v", watcher.debounce)
		}
	})
}

func TestWatcher_Watch(t *testing.T) {
	t.Run("detects file changes", func(t *testing.T) {
		loader := NewLoader()
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")

		initialContent := "app:\n  name: watch-test\nsignal:\n  max_bindings: 32\n"
		if err := os.WriteFile(configPath, []byte(initialContent), 0644); err != nil {
			t.Fatalf("failed to create temp config: %v", err)
		}

		watcher, err := NewWatcher(configPath, loader, WithDebounce(50*time.Millisecond))
		if err != nil {
			t.Fatalf("NewWatcher failed: %v", err)
		}
		defer watcher.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		var mu sync.Mutex
		var received *Config
		changed := make(chan struct{}, 1)

		watcher.OnChange(func(cfg *Config) {
			mu.Lock()
			received = cfg
			mu.Unlock()
			select {
			case changed <- struct{}{}:
			default:
			}
		})

		go func() { _ = watcher.Watch(ctx) }()

		// Give the watch loop time to install before writing.
		time.Sleep(100 * time.Millisecond)

		updated := "app:\n  name: watch-test\nsignal:\n  max_bindings: 99\n"
		if err := os.WriteFile(configPath, []byte(updated), 0644); err != nil {
			t.Fatalf("failed to update config: %v", err)
		}

		select {
		case <-changed:
		case <-ctx.Done():
			t.Fatal("timeout waiting for change callback")
		}

		mu.Lock()
		defer mu.Unlock()
		if received == nil {
			t.Fatal("expected reloaded config")
		}
		if received.Signal.MaxBindings != 99 {
			t.Errorf("expected reloaded max_bindings 99, got %d", received.Signal.MaxBindings)
		}
	})

	t.Run("double watch fails", func(t *testing.T) {
		loader := NewLoader()
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("app:\n  name: test\n"), 0644); err != nil {
			t.Fatalf("failed to create temp config: %v", err)
		}

		watcher, err := NewWatcher(configPath, loader)
		if err != nil {
			t.Fatalf("NewWatcher failed: %v", err)
		}
		defer watcher.Stop()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() { _ = watcher.Watch(ctx) }()
		time.Sleep(50 * time.Millisecond)

		if !watcher.IsRunning() {
			t.Fatal("expected watcher to be running")
		}
		if err := watcher.Watch(ctx); err == nil {
			t.Error("expected error from second Watch")
		}
	})
}

func TestExtractHotReloadable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "debug"
	cfg.Metrics.Enabled = false

	hr := ExtractHotReloadable(cfg)
	if hr.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", hr.LogLevel)
	}
	if hr.MetricsEnabled {
		t.Error("expected metrics to be disabled")
	}
}
