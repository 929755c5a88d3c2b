package main

import (
	"context"
	"os"
	"zelus/internal/config"
	"zelus/internal/fixtures"
	"zelus/internal/logging"

	"github.com/cockroachdb/errors"
)

func loadFixtures(conf *config.Config, log *logging.Logger) error {
	if _, err := os.Stat(conf.DBPath); err == nil {
		return errors.Newf("%s already exists, refusing to overwrite it", conf.DBPath)
	}

	demo := fixtures.Demo()
	if err := fixtures.Create(context.Background(), conf.MigrationsDir(), conf.DBPath, demo); err != nil {
		return err
	}

	log.Info("demo database created",
		"path", conf.DBPath,
		"players", len(demo.Players),
		"matches", len(demo.Matches),
	)

	return nil
}

func importData(conf *config.Config, log *logging.Logger, paths []string) error {
	if len(paths) == 0 {
		return errors.New("data:import needs at least one zip archive, directory or JSON file")
	}

	data, err := fixtures.ReadCricsheet(paths...)
	if err != nil {
		return err
	}

	if err := fixtures.Import(context.Background(), conf.MigrationsDir(), conf.DBPath, data); err != nil {
		return err
	}

	log.Info("cricsheet data imported",
		"path", conf.DBPath,
		"matches", len(data.Matches),
		"innings", len(data.Innings),
		"players", len(data.Players),
	)

	return nil
}

func writeConfig(conf *config.Config, path string, log *logging.Logger) error {
	if path == "" {
		var err error
		if path, err = config.UserConfigPath(); err != nil {
			return err
		}
	}

	if err := conf.Write(path); err != nil {
		return err
	}

	log.Info("configuration written", "path", path)

	return nil
}
