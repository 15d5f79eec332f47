package main

import (
	"os"

	"github.com/funvibe/shapeshift/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
