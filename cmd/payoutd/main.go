package main

import (
	"fmt"
	"os"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/payout"
	"github.com/iov-one/payout/commands"
)

func helpMessage() {
	fmt.Println("payoutd")
	fmt.Println("        Reward payout engine tooling")
	fmt.Println("")
	fmt.Println("help    Print this message")
	fmt.Println("replay  Dry run the failed payments of a cycle")
	fmt.Println("inspect Summarize the payment reports of a cycle")
	fmt.Println("version Print the version")
}

func main() {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).
		With("module", "payoutd")

	if len(os.Args) < 2 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	rest := os.Args[2:]

	var err error
	switch cmd {
	case "help":
		helpMessage()
	case "replay":
		err = commands.ReplayCmd(logger, rest)
	case "inspect":
		err = commands.InspectCmd(os.Stdout, rest)
	case "version":
		fmt.Println(payout.Version())
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		helpMessage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %+v\n", cmd, err)
		os.Exit(1)
	}
}
