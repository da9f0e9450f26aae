package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ClearDir removes the directory and all contents. It recreates the directory
// afterwards to leave a valid empty cache location.
func ClearDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return errors.New("empty dir")
	}
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// PurgeHTTPCacheByAge removes page entries whose SavedAt is older than maxAge.
// Both <key>.meta.json and <key>.body are deleted.
func PurgeHTTPCacheByAge(dir string, maxAge time.Duration) (int, error) {
	return purge(dir, maxAge, ".meta.json", func(path string, b []byte) (time.Time, bool) {
		var e HTTPEntry
		if err := json.Unmarshal(b, &e); err != nil {
			return time.Time{}, false
		}
		return e.SavedAt, true
	}, func(path string) {
		_ = os.Remove(strings.TrimSuffix(path, ".meta.json") + ".body")
	})
}

// PurgeTranslationCacheByAge removes translations last used more than maxAge
// ago, based on file modification time.
func PurgeTranslationCacheByAge(dir string, maxAge time.Duration) (int, error) {
	return purge(dir, maxAge, ".tr.json", func(path string, _ []byte) (time.Time, bool) {
		info, err := os.Stat(path)
		if err != nil {
			return time.Time{}, false
		}
		return info.ModTime(), true
	}, nil)
}

func purge(dir string, maxAge time.Duration, suffix string, stamp func(string, []byte) (time.Time, bool), also func(string)) (int, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	removed := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), suffix) {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		at, ok := stamp(path, b)
		if !ok || now.Sub(at.UTC()) <= maxAge {
			return nil
		}
		removed++
		_ = os.Remove(path)
		if also != nil {
			also(path)
		}
		return nil
	})
	return removed, err
}
