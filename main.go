// main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mitchellh/cli"

	"hashviz/command"
)

const version = "0.1.0"

func main() {
	// create context to handle signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalCn := make(chan os.Signal, 1)
	signal.Notify(signalCn, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signalCn
		cancel()
	}()

	ui := &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}

	c := cli.NewCLI("hashviz", version)
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"run": func() (cli.Command, error) {
			return &command.RunCommand{Ctx: ctx, Ui: ui}, nil
		},
		"algorithms": func() (cli.Command, error) {
			return &command.AlgorithmsCommand{Ui: ui}, nil
		},
		"bench": func() (cli.Command, error) {
			return &command.BenchCommand{Ui: ui}, nil
		},
		"version": func() (cli.Command, error) {
			return &command.VersionCommand{Version: version, Ui: ui}, nil
		},
	}

	exitCode, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing CLI: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
