// Package state persists the notify state across daemon restarts so the
// anti-spam suppression survives a crash or an upgrade.
package state

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/battguard/battguard/pkg/monitor"
)

const (
	stateFileName = "state"
	pidFileName   = "pid"
)

// Store owns the files under the state directory. The state file holds a
// single token (neutral / notified_high / notified_low) so it stays
// readable with cat when diagnosing the daemon.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Path() string {
	return filepath.Join(s.dir, stateFileName)
}

func (s *Store) PIDPath() string {
	return filepath.Join(s.dir, pidFileName)
}

// Load returns the persisted notify state. A missing file means first run
// and yields neutral.
func (s *Store) Load() (monitor.State, error) {
	b, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return monitor.StateNeutral, nil
		}
		return monitor.StateNeutral, pkgerrors.Wrapf(err, "failed to read state file %s", s.Path())
	}
	return monitor.ParseState(strings.TrimSpace(string(b))), nil
}

// Save atomically replaces the state file: write a private temp file in
// the same directory, then rename it over the old one. A crash mid-write
// can therefore never leave a corrupt or partial state file, and a stray
// second writer gets its own temp file instead of sharing one.
func (s *Store) Save(st monitor.State) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create state directory %s", s.dir)
	}

	tmp, err := os.CreateTemp(s.dir, stateFileName+"-*.tmp")
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create temp state file in %s", s.dir)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.WriteString(string(st) + "\n"); err != nil {
		_ = tmp.Close()
		return pkgerrors.Wrapf(err, "failed to write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return pkgerrors.Wrapf(err, "failed to close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return pkgerrors.Wrapf(err, "failed to replace state file %s", s.Path())
	}
	return nil
}

// WritePID records the daemon's pid under the state directory while the
// loop runs. Best effort; the supervisor is the real single-instance guard.
func (s *Store) WritePID() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create state directory %s", s.dir)
	}
	if err := os.WriteFile(s.PIDPath(), []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		return pkgerrors.Wrapf(err, "failed to write pid file %s", s.PIDPath())
	}
	return nil
}

func (s *Store) RemovePID() {
	_ = os.Remove(s.PIDPath())
}
