// Command exabanque-cli is the operator tool of the connector: key
// generation, connection checks, remote listings, manual cycles and sends.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/app"
)

type command struct {
	usage string
	run   func(a *app.App, args []string) error
}

var commands = map[string]command{
	"keygen":       {"keygen -profile <id|name> [-type rsa|ed25519]", runKeygen},
	"test":         {"test -profile <id|name>", runTest},
	"ls":           {"ls -profile <id|name> [-dir path]", runList},
	"count":        {"count -profile <id|name> [-dir path]", runCount},
	"run-once":     {"run-once [-connector id]", runOnce},
	"transactions": {"transactions [-kind lcr|statement|log] [-state s] [-limit n]", runTransactions},
	"trigger":      {"trigger [-connector id]", runTrigger},
	"send":         {"send -tx <id>", runSend},
}

var order = []string{"keygen", "test", "ls", "count", "run-once", "transactions", "trigger", "send"}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: exabanque-cli [-config file] <command> [flags]\n\ncommands:\n")
	for _, name := range order {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
}

func main() {
	cfgPath := flag.String("config", "", "config file (default $EXA_CONFIG or "+app.DefaultConfigPath+")")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		color.Red("unknown command %q", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	application, err := app.Initialize(*cfgPath)
	if err != nil {
		color.Red("Failed to initialize: %v", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := cmd.run(application, flag.Args()[1:]); err != nil {
		color.Red("✗ %v", err)
		application.Close()
		os.Exit(1)
	}
}
