package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

const (
	databaseURLFlag = "database-url"
	databaseIDFlag  = "database-id"

	DefaultDatabaseURL = "file:youtube_urls.db"
)

func RegisterDatabaseFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   databaseURLFlag,
			Usage:  "database url, postgres:// or a sqlite file path",
			Value:  DefaultDatabaseURL,
			EnvVar: "DATABASE_URL",
		},
		cli.StringFlag{
			Name:   databaseIDFlag,
			Usage:  "read the database url from DATABASE_URL_<ID> instead",
			EnvVar: "DATABASE_ID",
		},
	)
}

// GetDatabaseURL returns the database URL. When an identifier is set the URL
// is read from DATABASE_URL_<ID>, so several databases can live in one .env.
func GetDatabaseURL(c *cli.Context) (string, error) {
	dbID := strings.TrimSpace(c.String(databaseIDFlag))
	if dbID == "" {
		return c.String(databaseURLFlag), nil
	}

	dbURLKey := fmt.Sprintf("DATABASE_URL_%s", strings.ToUpper(dbID))
	dbURL := os.Getenv(dbURLKey)
	if dbURL == "" {
		return "", errors.Errorf("no database URL found for %s", dbURLKey)
	}
	return dbURL, nil
}
