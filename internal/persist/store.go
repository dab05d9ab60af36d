// Package persist keeps per-socket console state across process runs.
package persist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"pkt.systems/pslog"
)

// Snapshot captures console state worth keeping between attaches to the
// same player socket.
type Snapshot struct {
	History []string `json:"history,omitempty"`
}

// Store persists snapshots to disk, one file per socket identity.
type Store struct {
	dir string
	log pslog.Logger
}

// NewStore constructs a persistent store at the given directory.
func NewStore(dir string) (*Store, error) {
	return NewStoreWithLogger(dir, nil)
}

// NewStoreWithLogger constructs a persistent store with logging.
func NewStoreWithLogger(dir string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("state directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("state_dir", dir)
	}
	return &Store{dir: dir, log: logger}, nil
}

// Load reads the snapshot for a socket. A missing file is not an error.
func (s *Store) Load(socket string) (Snapshot, bool, error) {
	path := s.pathForSocket(socket)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if s.log != nil {
				s.log.Debug("state load miss", "socket", socket)
			}
			return Snapshot{}, false, nil
		}
		if s.log != nil {
			s.log.Warn("state load failed", "socket", socket, "err", err)
		}
		return Snapshot{}, false, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		if s.log != nil {
			s.log.Warn("state load failed", "socket", socket, "err", err)
		}
		return Snapshot{}, false, err
	}
	if s.log != nil {
		s.log.Debug("state load ok", "socket", socket, "history", len(snapshot.History))
	}
	return snapshot, true, nil
}

// Save writes the snapshot for a socket atomically.
func (s *Store) Save(socket string, snapshot Snapshot) error {
	path := s.pathForSocket(socket)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "state-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		if s.log != nil {
			s.log.Warn("state save failed", "socket", socket, "err", err)
		}
		return err
	}
	if s.log != nil {
		s.log.Trace("state save ok", "socket", socket, "history", len(snapshot.History))
	}
	return nil
}

func (s *Store) pathForSocket(socket string) string {
	name := sanitize(socket)
	if name == "" {
		name = "default"
	}
	return filepath.Join(s.dir, name+".json")
}

func sanitize(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if r == '-' || r == '_' || r == '.' {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	return strings.TrimLeft(b.String(), "_.")
}
