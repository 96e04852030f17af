package main

import (
	"github.com/trezcool/goose"

	"github.com/trezcool/bulletin/fs"
	"github.com/trezcool/bulletin/storage/database"
)

var gooseRunFunc = goose.RunFS // mockable

// migrate runs a goose command (`up`, `down-to 1`, `status`...) against the embedded migrations.
func (cli *commandLine) migrate(args []string) error {
	command, params := args[0], args[1:]
	return gooseRunFunc(command, cli.db, appfs.FS, database.MigrationsDir, params...)
}
