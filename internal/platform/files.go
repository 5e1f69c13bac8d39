package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/tnoatlas/atlas/internal/media"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// AppDirName is the directory created under the user cache and config roots
const AppDirName = "tno-atlas"

// MaxNameDifference is how many characters two names may differ by and still
// be treated as the same file
const MaxNameDifference = 10

// AudioExtensions are the extensions tried when a media file is missing
var AudioExtensions = media.SupportedExtensions()

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// IsAndroid reports whether the process runs on Android
func IsAndroid() bool {
	return runtime.GOOS == "android" ||
		os.Getenv("ANDROID_DATA") != "" ||
		os.Getenv("ANDROID_ROOT") != "" ||
		filepath.Base(os.Args[0]) == "libdist.so" // Fyne Android apps run as libdist.so
}

// CacheDir returns the per-user cache directory of the app, creating it
func CacheDir() (string, error) {
	root, err := os.UserCacheDir()
	if IsAndroid() || err != nil || root == "" {
		// Fyne points TMPDIR at the app cache on Android; minimal containers
		// have no XDG cache root either
		root = os.TempDir()
	}

	dir := filepath.Join(root, AppDirName)
	if err := CreateDirectoryIfNotExists(dir); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	return dir, nil
}

// TileCacheDir returns where downloaded map tiles are kept between runs
func TileCacheDir() (string, error) {
	root, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "tiles"), nil
}

// FindFileWithFallback returns filePath if it exists. Otherwise it looks in
// the same directory for a file with a similar name, first with the same
// extension and then with any supported audio extension.
func FindFileWithFallback(filePath string) (string, error) {
	if filePath == "" {
		return "", fmt.Errorf("file path is empty")
	}

	if strings.HasPrefix(filePath, "http://") || strings.HasPrefix(filePath, "https://") {
		return "", fmt.Errorf("file path appears to be a URL: %s", filePath)
	}

	if _, err := os.Stat(filePath); err == nil {
		return filePath, nil
	}

	dir := filepath.Dir(filePath)
	originalName := filepath.Base(filePath)
	originalExt := filepath.Ext(originalName)
	baseName := strings.TrimSuffix(originalName, originalExt)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var candidates []string
	var otherFormats []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		entryName := entry.Name()
		entryExt := filepath.Ext(entryName)
		entryBase := strings.TrimSuffix(entryName, entryExt)

		if !isSimilarFileName(entryBase, baseName) {
			continue
		}

		switch {
		case strings.EqualFold(entryExt, originalExt):
			candidates = append(candidates, filepath.Join(dir, entryName))
		case isAudioExtension(entryExt):
			otherFormats = append(otherFormats, filepath.Join(dir, entryName))
		}
	}

	if len(candidates) > 0 {
		sort.Strings(candidates)
		return candidates[0], nil
	}
	if len(otherFormats) > 0 {
		sort.Strings(otherFormats)
		return otherFormats[0], nil
	}

	return "", fmt.Errorf("file not found: %s", filePath)
}

// isSimilarFileName checks if two file names are similar enough to be
// considered the same file
func isSimilarFileName(name1, name2 string) bool {
	clean1 := normalizeName(name1)
	clean2 := normalizeName(name2)

	if clean1 == clean2 {
		return true
	}

	if clean1 == "" || clean2 == "" {
		return false
	}

	// truncated or decorated names
	if strings.Contains(clean1, clean2) || strings.Contains(clean2, clean1) {
		diff := len(clean1) - len(clean2)
		if diff < 0 {
			diff = -diff
		}
		return diff <= MaxNameDifference
	}

	return false
}

// normalizeName lowercases name and drops separators so "Track 1",
// "track_1" and "track-1" compare equal
func normalizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '.':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}

func isAudioExtension(ext string) bool {
	return lo.ContainsBy(AudioExtensions, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}
