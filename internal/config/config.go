// Package config loads forkvm.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
)

// FileName is the name searched for by Find.
const FileName = "forkvm.toml"

// Config is the resolved configuration. Zero values are never used
// directly; start from Default.
type Config struct {
	Path string // file it was loaded from, empty for defaults
	Run  Run
	Log  Log
}

type Run struct {
	Workers   int
	Heap      string
	Shards    int
	MaxRounds int
	FilesDir  string
}

type Log struct {
	Path   string
	Format string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Run: Run{Workers: 2, Heap: "auto", Shards: 16, FilesDir: "."},
		Log: Log{Format: "text"},
	}
}

type fileConfig struct {
	Run struct {
		Workers   int64  `toml:"workers"`
		Heap      string `toml:"heap"`
		Shards    int64  `toml:"shards"`
		MaxRounds int64  `toml:"max_rounds"`
		FilesDir  string `toml:"files_dir"`
	} `toml:"run"`
	Log struct {
		Path   string `toml:"path"`
		Format string `toml:"format"`
	} `toml:"log"`
}

// Find walks up from startDir to locate forkvm.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads explicit if set, otherwise the nearest forkvm.toml above
// startDir, otherwise the defaults.
func Discover(startDir, explicit string) (Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes path on top of the defaults. Keys that are not set keep
// their default; unknown keys are an error.
func Load(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg := Default()
	cfg.Path = path

	ints := []struct {
		key string
		src int64
		dst *int
	}{
		{"workers", raw.Run.Workers, &cfg.Run.Workers},
		{"shards", raw.Run.Shards, &cfg.Run.Shards},
		{"max_rounds", raw.Run.MaxRounds, &cfg.Run.MaxRounds},
	}
	for _, it := range ints {
		if !meta.IsDefined("run", it.key) {
			continue
		}
		if it.src < 0 {
			return Config{}, fmt.Errorf("%s: [run].%s must not be negative", path, it.key)
		}
		v, err := safecast.Conv[int](it.src)
		if err != nil {
			return Config{}, fmt.Errorf("%s: [run].%s: %w", path, it.key, err)
		}
		*it.dst = v
	}
	if meta.IsDefined("run", "heap") {
		cfg.Run.Heap = strings.TrimSpace(raw.Run.Heap)
		switch strings.ToLower(cfg.Run.Heap) {
		case "auto", "plain", "concurrent":
		default:
			return Config{}, fmt.Errorf("%s: [run].heap must be auto, plain or concurrent, got %q", path, raw.Run.Heap)
		}
	}
	if meta.IsDefined("run", "files_dir") {
		cfg.Run.FilesDir = raw.Run.FilesDir
	}
	// относительные пути считаем от каталога конфига
	if !filepath.IsAbs(cfg.Run.FilesDir) {
		cfg.Run.FilesDir = filepath.Join(filepath.Dir(path), cfg.Run.FilesDir)
	}
	if meta.IsDefined("log", "path") {
		cfg.Log.Path = strings.TrimSpace(raw.Log.Path)
		if cfg.Log.Path != "" && cfg.Log.Path != "-" && !filepath.IsAbs(cfg.Log.Path) {
			cfg.Log.Path = filepath.Join(filepath.Dir(path), cfg.Log.Path)
		}
	}
	if meta.IsDefined("log", "format") {
		cfg.Log.Format = strings.TrimSpace(raw.Log.Format)
	}
	return cfg, nil
}
