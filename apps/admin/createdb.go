package main

import (
	"github.com/trezcool/darasa/storage/database"
)

func (cli *commandLine) createDB() error {
	return database.CreateIfNotExist(cli.conf)
}
