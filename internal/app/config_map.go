package app

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"adhanclock/internal/config"
	"adhanclock/internal/storage"
	logx "adhanclock/pkg/logx"
)

// LegacySettingsName is the settings file kept in the install root.
const LegacySettingsName = ".settings"

// mapStorageConfig defaults to the file driver at <root>/.settings so a
// legacy install keeps its settings.
func mapStorageConfig(cfg *config.Config, root string, fs afero.Fs) (storage.Config, error) {
	sc := config.StorageConfig{Driver: "file"}
	if cfg != nil && cfg.Storage != nil {
		sc = *cfg.Storage
	}
	driver := strings.ToLower(strings.TrimSpace(sc.Driver))
	path := strings.TrimSpace(sc.Path)
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	switch driver {
	case "", "none":
		return storage.Config{Driver: "none"}, nil
	case "file":
		if path == "" {
			path = filepath.Join(root, LegacySettingsName)
		}
		return storage.Config{Driver: "file", Path: path, Fs: fs}, nil
	case "sqlite", "sqlite3":
		if path == "" {
			return storage.Config{}, config.Errorf("storage.path", "required when storage.driver=sqlite")
		}
		return storage.Config{Driver: driver, Path: path, BusyTimeout: time.Second}, nil
	default:
		return storage.Config{}, config.Errorf("storage.driver", "unknown driver %q (want file, sqlite or none)", sc.Driver)
	}
}

func mapLogConfig(cfg *config.Config) logx.Config {
	if cfg == nil {
		return logx.Config{Level: "info", Console: true}
	}
	l := cfg.Logging
	level := l.Level
	if strings.TrimSpace(level) == "" {
		level = "info"
	}
	return logx.Config{
		Level:   level,
		Console: l.Console,
		File: logx.FileConfig{
			Enabled: l.File.Enabled,
			Path:    l.File.Path,
		},
		Journal: l.Journal,
	}
}
