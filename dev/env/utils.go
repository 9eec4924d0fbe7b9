package devenv

import (
	"bidsniper/lib/configutil"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// StateDirEnv moves the dev state out of dev/.state, e.g. to a scratch
// directory on CI.
const StateDirEnv = "BIDSNIPER_DEV_STATE"

// StatePrefix starts paths that live in the dev state directory, like
// <dev_state>/snapshots.db.
const StatePrefix = "<dev_state>"

const moduleName = "bidsniper"

var moduleLine = regexp.MustCompile(`(?m)^module\s+(\S+)\s*$`)

func isWorkspaceRoot(dir string) bool {
	mod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		return false
	}
	matches := moduleLine.FindSubmatch(mod)
	return len(matches) >= 2 && string(matches[1]) == moduleName
}

// WorkspaceRoot returns the closest parent of the working directory
// holding the bidsniper go.mod.
func WorkspaceRoot() (string, error) {
	dir, err := filepath.Abs(".")
	if err != nil {
		return "", err
	}
	for !isWorkspaceRoot(dir) {
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
	return dir, nil
}

// StateDir returns the dev state directory, creating it if needed.
func StateDir() (string, error) {
	dir := os.Getenv(StateDirEnv)
	if dir == "" {
		root, err := WorkspaceRoot()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(root, "dev", ".state")
	}
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return "", err
	}
	return dir, nil
}

func GetStateFilePath(name string) (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func GetStateConfig[T any](name string) (T, error) {
	path, err := GetStateFilePath(name)
	if err != nil {
		var out T
		return out, err
	}
	return configutil.ReadConfig[T](path)
}

// ResolvePath expands a leading <dev_state>, other paths are returned as
// they are.
func ResolvePath(path string) (string, error) {
	rest, ok := strings.CutPrefix(path, StatePrefix)
	if !ok {
		return path, nil
	}
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, rest), nil
}
