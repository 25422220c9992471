package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/voluzi/debugpilot/cmd/debugpilot/cmd"
)

func main() {
	cmd.Execute()
}
