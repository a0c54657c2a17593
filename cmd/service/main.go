package main

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.WithError(err).Debug("no .env file loaded")
	}

	app := cli.NewApp()
	app.Name = "youtube-transcript-search"
	app.Usage = "searches the transcripts of registered YouTube videos"
	configure(app)

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("failed to run app")
	}
}
