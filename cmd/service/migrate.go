package main

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"jamesfarrell.me/youtube-transcript-search/internal/config"
	"jamesfarrell.me/youtube-transcript-search/internal/storage/db"
)

func makeMigrateCMD() cli.Command {
	return cli.Command{
		Name:   "migrate",
		Usage:  "Creates the database tables if they are missing",
		Flags:  config.RegisterLogFlags(config.RegisterDatabaseFlags(nil)),
		Action: migrate,
	}
}

func makeResetCMD() cli.Command {
	return cli.Command{
		Name:   "reset-db",
		Usage:  "Drops every table and recreates the schema",
		Flags:  config.RegisterLogFlags(config.RegisterDatabaseFlags(nil)),
		Action: reset,
	}
}

func migrate(c *cli.Context) error {
	return withDB(c, func(ctx context.Context, d *db.DB) error {
		if err := d.Migrate(ctx); err != nil {
			return err
		}
		log.Info("database migrated")
		return nil
	})
}

func reset(c *cli.Context) error {
	return withDB(c, func(ctx context.Context, d *db.DB) error {
		if err := d.Reset(ctx); err != nil {
			return err
		}
		log.Warn("database reset, all registered videos were removed")
		return nil
	})
}

func withDB(c *cli.Context, fn func(ctx context.Context, d *db.DB) error) error {
	closer, err := config.ConfigureLogging(config.NewLogConfig(c))
	if err != nil {
		return err
	}
	defer closer.Close()

	dbURL, err := config.GetDatabaseURL(c)
	if err != nil {
		return err
	}
	d, err := db.NewConnection(db.Config{URL: dbURL})
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(context.Background(), d)
}
