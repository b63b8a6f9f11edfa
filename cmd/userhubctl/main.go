package main

import (
	"os"

	"userhub/internal/cli"
)

func main() { os.Exit(cli.Execute()) }
