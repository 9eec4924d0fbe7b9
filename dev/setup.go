package main

import (
	devenv "bidsniper/dev/env"
	"bidsniper/lib/snapstore"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	snapshotDb     = "snapshots.db"
	liveTestConfig = "ebay_config.json5"
)

// CreateSnapshotDB creates the snapshot db the CLI can be pointed at with
// --db <dev_state>/snapshots.db.
func CreateSnapshotDB() error {
	path, err := devenv.ResolvePath(filepath.Join(devenv.StatePrefix, snapshotDb))
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	db, err := snapstore.Open(path)
	if err != nil {
		return err
	}
	return db.Close()
}

// CreateDiagnosticsDir creates the directory captured pages go to when
// the CLI is run with --diagnostics <dev_state>/diagnostics.
func CreateDiagnosticsDir() error {
	path, err := devenv.ResolvePath(filepath.Join(devenv.StatePrefix, "diagnostics"))
	if err != nil {
		return err
	}
	return os.MkdirAll(path, 0777)
}

// CreateLiveTestConfig writes an empty config for the tests that talk to
// the real site, they are skipped until it is filled in.
func CreateLiveTestConfig() error {
	path, err := devenv.GetStateFilePath(liveTestConfig)
	if err != nil {
		return err
	}
	_, err = os.Stat(path)
	if err == nil {
		return nil
	}

	empty, err := json.MarshalIndent(devenv.LiveTestConfig{}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, empty, 0600)
}

func PrintConfigLocations() {
	path, err := devenv.GetStateFilePath(liveTestConfig)
	if err != nil {
		return
	}
	slog.Info("tests against the real site are skipped until their config is filled in", "path", path)
}
