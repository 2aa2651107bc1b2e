package storage

import (
	"context"
	"errors"
	"strings"

	"adhanclock/internal/config"
	logx "adhanclock/pkg/logx"
)

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.Component("storage").With(logx.String("driver", driver))

	switch driver {
	case "", "none":
		return noneStore{}, nil
	case "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}

type noneStore struct{}

func (noneStore) LoadSettings(context.Context) (config.Record, bool, error) {
	return config.Record{}, false, nil
}
func (noneStore) SaveSettings(context.Context, config.Record) error { return ErrDisabled }
func (noneStore) AppendRun(context.Context, RunEntry) error         { return ErrDisabled }
func (noneStore) LastRun(context.Context) (RunEntry, bool, error)   { return RunEntry{}, false, nil }
func (noneStore) Close() error                                      { return nil }
