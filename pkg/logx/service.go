package logx

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// DefaultFilePath is used when file logging is on without a path.
const DefaultFilePath = "./adhanclock.log"

type Config struct {
	Level   string
	Console bool
	File    FileConfig
	// Journal forwards records to the systemd journal when it is reachable.
	Journal bool
}

type FileConfig struct {
	Enabled bool
	Path    string
}

// Service owns the configured sinks. Loggers taken from it pick up sink
// changes made by Apply.
type Service struct {
	mu   sync.Mutex
	cfg  Config
	file *os.File

	root atomic.Pointer[zerolog.Logger]
}

// New builds the service from cfg and returns it with its root logger.
func New(cfg Config) (*Service, Logger) {
	s := &Service{}
	s.Apply(cfg)
	return s, s.Logger()
}

func (s *Service) Logger() Logger { return Logger{svc: s} }

// Config returns the config last passed to Apply.
func (s *Service) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *Service) current() zerolog.Logger {
	if zl := s.root.Load(); zl != nil {
		return *zl
	}
	return zerolog.Nop()
}

// Apply replaces the sinks and level. Safe for concurrent use.
func (s *Service) Apply(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg = cfg
	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}

	var sinks []io.Writer
	if cfg.Console {
		sinks = append(sinks, consoleWriter(Stdout()))
	}
	if cfg.File.Enabled {
		if f, err := openLogFile(cfg.File.Path); err != nil {
			fmt.Fprintf(Stderr(), "logx: %v\n", err)
		} else {
			s.file = f
			sinks = append(sinks, zerolog.SyncWriter(f))
		}
	}
	if cfg.Journal {
		if jw := newJournalWriter(); jw != nil {
			sinks = append(sinks, jw)
		} else {
			fmt.Fprintln(Stderr(), "logx: journal logging enabled but the systemd journal is not reachable")
		}
	}
	if len(sinks) == 0 {
		sinks = append(sinks, consoleWriter(Stdout()))
	}

	zl := newRoot(zerolog.MultiLevelWriter(sinks...), ParseLevel(cfg.Level))
	s.root.Store(&zl)
}

func openLogFile(path string) (*os.File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultFilePath
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %q: %w", path, err)
	}
	return f, nil
}

// Close releases the log file, if any.
func (s *Service) Close() error {
	s.mu.Lock()
	f := s.file
	s.file = nil
	s.mu.Unlock()
	if f != nil {
		return f.Close()
	}
	return nil
}

// Stdout returns the configured stdout sink.
func Stdout() io.Writer { return os.Stdout }

// Stderr returns the configured stderr sink.
func Stderr() io.Writer { return os.Stderr }
