package db

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var schema = map[Dialect][]string{
	SQLite: {
		`CREATE TABLE IF NOT EXISTS urls (
			id  INTEGER PRIMARY KEY AUTOINCREMENT,
			url TEXT UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS video_info (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			url           TEXT UNIQUE NOT NULL,
			title         TEXT,
			thumbnail_url TEXT,
			duration      INT,
			url_id        INTEGER,
			FOREIGN KEY (url_id) REFERENCES urls(id) ON DELETE CASCADE
		)`,
	},
	Postgres: {
		`CREATE TABLE IF NOT EXISTS urls (
			id  BIGSERIAL PRIMARY KEY,
			url TEXT UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS video_info (
			id            BIGSERIAL PRIMARY KEY,
			url           TEXT UNIQUE NOT NULL,
			title         TEXT,
			thumbnail_url TEXT,
			duration      INT,
			url_id        BIGINT REFERENCES urls(id) ON DELETE CASCADE
		)`,
	},
}

// Migrate creates the urls and video_info tables if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema[d.Dialect] {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to create schema")
		}
	}
	log.WithField("dialect", d.Dialect).Debug("schema is up to date")
	return nil
}

// Reset drops both tables and creates them again. Every registration is lost.
func (d *DB) Reset(ctx context.Context) error {
	for _, table := range []string{"video_info", "urls"} {
		if _, err := d.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return errors.Wrapf(err, "failed to drop %s", table)
		}
	}
	log.Warn("dropped urls and video_info tables")
	return d.Migrate(ctx)
}
