package main

import (
	"github.com/NethermindEth/geoipupdate/cli"
	"github.com/NethermindEth/geoipupdate/internal/locker"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	fs := afero.NewOsFs()
	locker := locker.NewFLock()

	cmd := cli.RootCmd(fs, locker, version)
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
