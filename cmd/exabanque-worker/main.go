package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/app"
)

func main() {
	cfgPath := flag.String("config", "", "config file (default $EXA_CONFIG or "+app.DefaultConfigPath+")")
	flag.Parse()

	application, err := app.Initialize(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start worker: %v\n", err)
		os.Exit(1)
	}

	application.Run()
}
