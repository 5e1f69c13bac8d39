package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateDirectoryIfNotExists(t *testing.T) {
	// Create temporary directory for testing
	tempDir := t.TempDir()
	testDir := filepath.Join(tempDir, "test_dir")

	// Directory should not exist initially
	if _, err := os.Stat(testDir); !os.IsNotExist(err) {
		t.Fatalf("Test directory already exists: %s", testDir)
	}

	err := CreateDirectoryIfNotExists(testDir)
	if err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}

	if _, err := os.Stat(testDir); os.IsNotExist(err) {
		t.Fatalf("Directory was not created: %s", testDir)
	}

	// Second call should not fail
	err = CreateDirectoryIfNotExists(testDir)
	if err != nil {
		t.Fatalf("Failed to handle existing directory: %v", err)
	}
}

func TestCacheDir_Android(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("ANDROID_DATA", "/data")
	t.Setenv("TMPDIR", tmp)

	if !IsAndroid() {
		t.Fatal("Expected ANDROID_DATA to mark the process as Android")
	}

	dir, err := CacheDir()
	if err != nil {
		t.Fatalf("Failed to get cache directory: %v", err)
	}
	if dir != filepath.Join(tmp, AppDirName) {
		t.Errorf("Expected cache under TMPDIR %s, got %s", tmp, dir)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir, err := CacheDir()
	if err != nil {
		t.Fatalf("Failed to get cache directory: %v", err)
	}
	if filepath.Base(dir) != AppDirName {
		t.Errorf("Expected directory to end with %q, got: %s", AppDirName, dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("Expected cache directory to exist: %v", err)
	}

	tiles, err := TileCacheDir()
	if err != nil {
		t.Fatalf("Failed to get tile cache directory: %v", err)
	}
	if !strings.HasPrefix(tiles, dir) {
		t.Errorf("Expected tile cache under %s, got %s", dir, tiles)
	}
}

func TestFindFileWithFallback(t *testing.T) {
	tempDir := t.TempDir()
	files := []string{"track1.mp3", "Burgundian Lullaby.ogg", "notes.txt"}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(tempDir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}

	tests := []struct {
		name     string
		path     string
		expected string
		wantErr  bool
	}{
		{"exact", filepath.Join(tempDir, "track1.mp3"), filepath.Join(tempDir, "track1.mp3"), false},
		{"case and separators", filepath.Join(tempDir, "burgundian_lullaby.ogg"), filepath.Join(tempDir, "Burgundian Lullaby.ogg"), false},
		{"other audio format", filepath.Join(tempDir, "burgundian-lullaby.mp3"), filepath.Join(tempDir, "Burgundian Lullaby.ogg"), false},
		{"non audio sibling ignored", filepath.Join(tempDir, "notes.mp3"), "", true},
		{"unrelated", filepath.Join(tempDir, "something.mp3"), "", true},
		{"empty", "", "", true},
		{"url", "https://example.com/track1.mp3", "", true},
		{"missing directory", filepath.Join(tempDir, "nope", "a.mp3"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindFileWithFallback(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FindFileWithFallback() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("FindFileWithFallback() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestIsSimilarFileName(t *testing.T) {
	tests := []struct {
		a, b     string
		expected bool
	}{
		{"track1", "track1", true},
		{"Track 1", "track_1", true},
		{"track1", "track1 (live)", true},
		{"toolbox", "a completely different and much longer name toolbox", false},
		{"", "track1", false},
		{"lullaby", "fairytale", false},
	}

	for _, test := range tests {
		if got := isSimilarFileName(test.a, test.b); got != test.expected {
			t.Errorf("isSimilarFileName(%q, %q) = %v, expected %v", test.a, test.b, got, test.expected)
		}
	}
}
