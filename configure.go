package main

import (
	"github.com/urfave/cli"
)

func configure(app *cli.App) {
	serveCMD := makeServeCMD()
	migrationCMD := makePGMigrationCMD()
	videosCMD := makeVideosCMD()
	tokenCMD := makeTokenCMD()
	app.Commands = []cli.Command{serveCMD, migrationCMD, videosCMD, tokenCMD}
}
