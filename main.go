package main

import (
	"fmt"
	"os"

	"procfleet/cmd"
	"procfleet/launcher"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == launcher.HelperFlag {
		os.Exit(launcher.RunHelper(os.Args[2:]))
	}

	if err := cmd.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
