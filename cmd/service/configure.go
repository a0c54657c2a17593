package main

import (
	"github.com/urfave/cli"

	"jamesfarrell.me/youtube-transcript-search/internal/config"
)

func configure(app *cli.App) {
	serveCMD := makeServeCMD()
	migrateCMD := makeMigrateCMD()
	resetCMD := makeResetCMD()
	app.Commands = []cli.Command{serveCMD, migrateCMD, resetCMD}

	// serving is the default when no command is given
	app.Flags = config.RegisterFlags(nil)
	app.Action = serve
}
