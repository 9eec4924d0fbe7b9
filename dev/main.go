package main

import (
	devenv "bidsniper/dev/env"
	"bidsniper/lib/util/serviceutil"
	"flag"
	"fmt"
	"log/slog"
	"os"
)

func create(recreate bool) error {
	if os.Getenv(devenv.StateDirEnv) == "" {
		_, err := os.Stat("go.mod")
		if os.IsNotExist(err) {
			return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file) or %s must be set", devenv.StateDirEnv)
		}
	}

	state, err := devenv.StateDir()
	if err != nil {
		return err
	}
	if recreate {
		err = os.RemoveAll(state)
		if err != nil {
			return err
		}
		state, err = devenv.StateDir()
		if err != nil {
			return err
		}
	}
	slog.Info("dev state", "dir", state)

	err = CreateSnapshotDB()
	if err != nil {
		return err
	}
	err = CreateDiagnosticsDir()
	if err != nil {
		return err
	}
	err = CreateLiveTestConfig()
	if err != nil {
		return err
	}
	PrintConfigLocations()

	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		serviceutil.Fatal("failed to create dev environment", err)
	}

	slog.Info("dev environment created sucessfully!")
}
