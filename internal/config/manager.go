package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	logx "adhanclock/pkg/logx"
)

// Manager loads the config file and optionally watches it for changes.
type Manager struct {
	path string
	fs   afero.Fs
	log  logx.Logger

	mu       sync.RWMutex
	cfg      *Config
	lastHash uint64
}

func NewManager(fs afero.Fs, path string) *Manager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Manager{path: path, fs: fs, log: logx.Nop()}
}

func (m *Manager) SetLogger(log logx.Logger) {
	if log.IsZero() {
		log = logx.Nop()
	}
	m.log = log
}

func (m *Manager) Path() string { return m.path }

// Parse reads and strictly decodes the config file. Every failure is a
// ConfigError: a config file that was asked for but cannot be used is a
// usage problem.
func (m *Manager) Parse() (*Config, error) {
	b, err := afero.ReadFile(m.fs, m.path)
	if err != nil {
		return nil, Wrap(m.path, err)
	}
	cfg, err := Decode(m.path, b)
	if err != nil {
		return nil, Wrap(m.path, err)
	}
	return cfg, nil
}

// Decode parses JSON (or YAML, chosen by path extension) into a Config.
// Unknown fields and trailing data are rejected.
func Decode(path string, b []byte) (*Config, error) {
	jb, _, err := coerceToJSONBytes(path, b)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, errors.New("invalid config: trailing data")
		}
		return nil, err
	}
	return &cfg, nil
}

func (m *Manager) Load() (*Config, error) {
	cfg, err := m.Parse()
	if err != nil {
		return nil, err
	}
	m.commit(cfg)
	return cfg, nil
}

func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) commit(cfg *Config) {
	m.mu.Lock()
	m.cfg = cfg
	m.lastHash = hashConfig(cfg)
	m.mu.Unlock()
}

func hashConfig(cfg *Config) uint64 {
	if cfg == nil {
		return 0
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return 0
	}
	return hashBytes(b)
}

// Watch calls onChange with every successfully parsed, content-changed
// version of the config file until ctx is done. Calls are serialized.
func (m *Manager) Watch(ctx context.Context, onChange func(old, cur *Config)) error {
	dir := filepath.Dir(m.path)
	file := filepath.Base(m.path)

	const (
		restartBackoffBase = 250 * time.Millisecond
		restartBackoffMax  = 5 * time.Second
		debounceDelay      = 250 * time.Millisecond
	)
	backoff := restartBackoffBase
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	nextWait := func() time.Duration {
		wait := backoff + time.Duration(rng.Int63n(int64(backoff/2)+1))
		backoff = min(backoff*2, restartBackoffMax)
		return wait
	}

	// Editors often emit several events per save; coalesce them.
	var (
		runMu   sync.Mutex
		stopped bool
		timerMu sync.Mutex
		timer   *time.Timer
	)
	reload := func() {
		runMu.Lock()
		defer runMu.Unlock()
		if stopped || ctx.Err() != nil {
			return
		}
		cfg, err := m.Parse()
		if err != nil {
			m.log.Warn("config parse failed", logx.String("path", m.path), logx.Err(err))
			return
		}
		h := hashConfig(cfg)
		m.mu.RLock()
		old := m.cfg
		unchanged := h != 0 && h == m.lastHash
		m.mu.RUnlock()
		if unchanged {
			m.log.Debug("config unchanged; skipping", logx.String("path", m.path))
			return
		}
		m.commit(cfg)
		onChange(old, cfg)
	}
	debounce := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceDelay, reload)
	}
	// On return no onChange call is running or will start.
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
		runMu.Lock()
		stopped = true
		runMu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}

		w, err := fsnotify.NewWatcher()
		if err == nil {
			if err = w.Add(dir); err != nil {
				_ = w.Close()
			}
		}
		if err != nil {
			wait := nextWait()
			m.log.Warn("config watch init failed", logx.Err(err), logx.String("dir", dir), logx.Duration("backoff", wait))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
				continue
			}
		}

		backoff = restartBackoffBase
		m.log.Debug("config watcher started", logx.String("dir", dir), logx.String("file", file))

		broken := false
		for !broken {
			select {
			case <-ctx.Done():
				_ = w.Close()
				return nil
			case ev, ok := <-w.Events:
				if !ok {
					broken = true
					break
				}
				// Compare by basename: the watched dir may be reported relative or absolute.
				if strings.EqualFold(filepath.Base(ev.Name), file) &&
					ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					debounce()
				}
			case err, ok := <-w.Errors:
				if !ok {
					broken = true
					break
				}
				if errors.Is(err, fsnotify.ErrEventOverflow) {
					m.log.Warn("config watch overflow; forcing reload", logx.String("dir", dir))
					debounce()
					continue
				}
				m.log.Warn("config watch error", logx.Err(err), logx.String("dir", dir))
			}
		}

		_ = w.Close()
		wait := nextWait()
		m.log.Warn("config watcher stopped; restarting", logx.String("dir", dir), logx.Duration("backoff", wait))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// String is used in log lines.
func (m *Manager) String() string { return fmt.Sprintf("config(%s)", m.path) }
