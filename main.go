package main

import (
	"os"

	"github.com/bsb-logistics/ganttboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
