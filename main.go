package main

import (
	"os"

	"protonup-go/cli"
)

func main() {
	os.Exit(cli.Execute())
}
