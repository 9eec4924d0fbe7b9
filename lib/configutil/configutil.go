package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// localName returns the override file of name, config.json5 is overridden
// by config.local.json5.
func localName(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + ".local" + ext
}

// Merge overrides dst with every field set in src. Pointer fields are
// copied as pointers so an explicit false or zero survives.
func Merge[T any](dst *T, src T) error {
	return mergo.Merge(dst, src, mergo.WithOverride, mergo.WithoutDereference)
}

func readJSON5[T any](path string, out *T) (bool, error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && len(contents) == 0) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	return true, nil
}

// ReadConfig reads a json5 config file and merges <name>.local.<ext> over
// it when that exists. It returns os.ErrNotExist when neither does.
func ReadConfig[T any](name string) (T, error) {
	var out T
	found, err := readJSON5(name, &out)
	if err != nil {
		return out, err
	}

	local := localName(name)
	var override T
	foundLocal, err := readJSON5(local, &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = Merge(&out, override)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", local)
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadLayers merges every config file of paths that exists over dst,
// later paths win. It returns the paths that were read.
func ReadLayers[T any](dst *T, paths ...string) ([]string, error) {
	var read []string
	for _, path := range paths {
		layer, err := ReadConfig[T](path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return read, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		err = Merge(dst, layer)
		if err != nil {
			return read, fmt.Errorf("failed to merge config %s: %w", path, err)
		}
		slog.Debug("read config", "path", path)
		read = append(read, path)
	}
	return read, nil
}

// ReadRecursively looks for name in the working directory and each of its
// parents, returning the first config found.
func ReadRecursively[T any](name string) (T, error) {
	var out T
	current, err := os.Getwd()
	if err != nil {
		return out, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return out, err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return out, os.ErrNotExist
		}
		current = parent
	}
}
