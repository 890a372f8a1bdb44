package daemon

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoReloadCommand is returned by Reload when no command was configured
var ErrNoReloadCommand = errors.New("no reload command configured")

// Manager writes generated peer configuration for a routing daemon and
// asks the daemon to pick it up
type Manager struct {
	path      string
	reloadCmd []string
}

// NewManager creates a manager for the config file at path. reloadCmd is
// split on whitespace, e.g. "birdc configure".
func NewManager(path, reloadCmd string) *Manager {
	return &Manager{
		path:      path,
		reloadCmd: strings.Fields(reloadCmd),
	}
}

// Path returns the managed config file
func (m *Manager) Path() string {
	return m.path
}

// WriteConfig replaces the config file with content. The file is left
// untouched, and changed is false, when it already holds content.
func (m *Manager) WriteConfig(content string) (changed bool, err error) {
	existing, err := os.ReadFile(m.path)
	if err == nil && bytes.Equal(existing, []byte(content)) {
		return false, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to read config: %w", err)
	}

	// Write to a temp file in the same directory so the daemon never sees
	// a partially written config
	dir, base := filepath.Split(m.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return false, fmt.Errorf("failed to create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}

	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return false, fmt.Errorf("failed to replace config: %w", err)
	}

	return true, nil
}

// Reload runs the configured reload command, e.g. `birdc configure`
func (m *Manager) Reload() error {
	if len(m.reloadCmd) == 0 {
		return ErrNoReloadCommand
	}

	cmd := exec.Command(m.reloadCmd[0], m.reloadCmd[1:]...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to reload daemon: %w (output: %s)", err, strings.TrimSpace(string(output)))
	}

	return nil
}
