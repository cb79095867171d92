package main

import (
	"os"

	"plancal/internal/cli"
	appLog "plancal/internal/log"
)

var version = "dev"

func main() {
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		appLog.Error("plancal failed", err)
		os.Exit(1)
	}
}
