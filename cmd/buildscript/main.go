package main

import (
	"os"

	"github.com/poltergeist/buildscript/pkg/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	config := cli.NewConfig()
	config.Version = version

	if err := cli.NewCLI(config).Execute(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
