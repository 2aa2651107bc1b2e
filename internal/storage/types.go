package storage

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/afero"

	"adhanclock/internal/config"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default

	// Fs backs the file driver; nil means the OS filesystem.
	Fs afero.Fs
}

// RunEntry records one update run.
// Keep it compact and schema-stable.
type RunEntry struct {
	At      time.Time `json:"at"`
	Mode    string    `json:"mode,omitempty"`
	Jobs    int       `json:"jobs"`
	Removed int       `json:"removed"`
	DryRun  bool      `json:"dry_run,omitempty"`
	Error   string    `json:"error,omitempty"`
	TookMS  int64     `json:"took_ms"`
}

// Store is the persistence API used by the app.
type Store interface {
	// LoadSettings returns the persisted record; ok is false when nothing
	// has been saved yet.
	LoadSettings(ctx context.Context) (rec config.Record, ok bool, err error)
	SaveSettings(ctx context.Context, rec config.Record) error

	AppendRun(ctx context.Context, e RunEntry) error
	LastRun(ctx context.Context) (e RunEntry, ok bool, err error)

	Close() error
}

func checkVersion(v int) error {
	if v > config.RecordVersion {
		return errors.New("settings record version is newer than this build supports")
	}
	return nil
}
