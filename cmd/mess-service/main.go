package main

import (
	"flag"
	"os"

	"github.com/wardroom/messbook/messservice"
)

func main() {
	// Optional data-root flag override (takes precedence over MESSBOOK_DATA_ROOT).
	dataRoot := flag.String("data-root", "", "Override MESSBOOK_DATA_ROOT")
	flag.Parse()

	if *dataRoot != "" {
		_ = os.Setenv("MESSBOOK_DATA_ROOT", *dataRoot)
	}

	if err := messservice.Run(); err != nil {
		os.Exit(1)
	}
}
