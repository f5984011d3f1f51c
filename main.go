package main

import (
	"os"

	"github.com/smazurov/mlcsnap/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
