package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"adhanclock/internal/config"
	logx "adhanclock/pkg/logx"
)

//go:embed migrations.sql
var migrationsFS embed.FS

type sqliteStore struct {
	db  *sqlx.DB
	log logx.Logger
}

type settingsRow struct {
	Version int    `db:"version"`
	Payload string `db:"payload"`
}

type runRow struct {
	At      string         `db:"at"`
	Mode    sql.NullString `db:"mode"`
	Jobs    int            `db:"jobs"`
	Removed int            `db:"removed"`
	DryRun  bool           `db:"dry_run"`
	Err     sql.NullString `db:"err"`
	TookMS  int64          `db:"took_ms"`
}

func openSQLite(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite prefers a small number of concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &sqliteStore{db: db, log: log}

	if cfg.BusyTimeout > 0 {
		_, _ = db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	_, _ = db.Exec("PRAGMA journal_mode = WAL")
	_, _ = db.Exec("PRAGMA synchronous = NORMAL")

	if err := st.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *sqliteStore) LoadSettings(ctx context.Context) (config.Record, bool, error) {
	var row settingsRow
	err := s.db.GetContext(ctx, &row, `SELECT version, payload FROM settings WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return config.Record{}, false, nil
	}
	if err != nil {
		return config.Record{}, false, err
	}
	if err := checkVersion(row.Version); err != nil {
		return config.Record{}, false, err
	}
	var rec config.Record
	if err := json.Unmarshal([]byte(row.Payload), &rec); err != nil {
		return config.Record{}, false, fmt.Errorf("decode settings row: %w", err)
	}
	rec.Version = row.Version
	return rec, true, nil
}

func (s *sqliteStore) SaveSettings(ctx context.Context, rec config.Record) error {
	rec.Version = config.RecordVersion
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings(id, version, payload, updated_at) VALUES(1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET version=excluded.version, payload=excluded.payload, updated_at=excluded.updated_at`,
		rec.Version, string(b), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err == nil {
		s.log.Debug("settings saved")
	}
	return err
}

func (s *sqliteStore) AppendRun(ctx context.Context, e RunEntry) error {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO runs(at, mode, jobs, removed, dry_run, err, took_ms)
		 VALUES(:at, :mode, :jobs, :removed, :dry_run, :err, :took_ms)`,
		runRow{
			At:      e.At.UTC().Format(time.RFC3339Nano),
			Mode:    nullStr(e.Mode),
			Jobs:    e.Jobs,
			Removed: e.Removed,
			DryRun:  e.DryRun,
			Err:     nullStr(e.Error),
			TookMS:  e.TookMS,
		},
	)
	return err
}

func (s *sqliteStore) LastRun(ctx context.Context) (RunEntry, bool, error) {
	var row runRow
	err := s.db.GetContext(ctx, &row,
		`SELECT at, mode, jobs, removed, dry_run, err, took_ms FROM runs ORDER BY id DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return RunEntry{}, false, nil
	}
	if err != nil {
		return RunEntry{}, false, err
	}
	at, err := time.Parse(time.RFC3339Nano, row.At)
	if err != nil {
		return RunEntry{}, false, fmt.Errorf("decode run time: %w", err)
	}
	return RunEntry{
		At:      at,
		Mode:    row.Mode.String,
		Jobs:    row.Jobs,
		Removed: row.Removed,
		DryRun:  row.DryRun,
		Error:   row.Err.String,
		TookMS:  row.TookMS,
	}, true, nil
}

func nullStr(v string) sql.NullString {
	if strings.TrimSpace(v) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}
