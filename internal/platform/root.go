package platform

import (
	"errors"
	"os"
	"path/filepath"
)

const (
	// SystemDir marks a project-local notes directory.
	SystemDir = ".quire"
	// ConfigFile is the optional configuration file name.
	ConfigFile = "quire.yaml"
)

// ErrRootNotFound is returned by FindRoot when no marker exists above the
// start directory.
var ErrRootNotFound = errors.New("quire root not found")

// FindRoot looks upwards from startDir for a directory holding a .quire
// directory or a quire.yaml file and returns its absolute path.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, SystemDir) || hasFile(dir, ConfigFile) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

// DefaultDataDir is where notes live when no project root is found:
// $XDG_DATA_HOME/quire, falling back to ~/.local/share/quire.
func DefaultDataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "quire"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "quire"), nil
}

// ResolveDataDir picks the data directory for a session started in
// startDir: the .quire directory of the enclosing project root if there is
// one, the default data directory otherwise.
func ResolveDataDir(startDir string) (string, error) {
	root, err := FindRoot(startDir)
	if err == nil {
		return filepath.Join(root, SystemDir), nil
	}
	if !errors.Is(err, ErrRootNotFound) {
		return "", err
	}
	return DefaultDataDir()
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
