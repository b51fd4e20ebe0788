// countdown tracks deadlines and occasions from the terminal.
package main

import (
	"fmt"
	"os"

	"countdown/cmd"
)

// version is stamped at build time:
//
//	go build -ldflags "-X main.version=v1.2.3" .
var version = "dev"

func main() {
	cmd.SetVersion(version)
	if err := cmd.RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
