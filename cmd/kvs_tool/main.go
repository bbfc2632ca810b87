package main

import (
	"os"

	flags "github.com/jessevdk/go-flags"
)

func main() {
	var options Options
	parser := flags.NewParser(&options, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}

		os.Exit(1)
	}

	if err := Run(options, os.Stdout); err != nil {
		os.Exit(1)
	}

	os.Exit(0)
}
