package main

import (
	"os"

	"github.com/altmm/altmm/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
