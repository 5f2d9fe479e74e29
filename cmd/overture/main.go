package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/overture-run/overture/cmd/overture/commands"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Exit codes.
const (
	exitOK       = 0
	exitBuild    = 1
	exitActor    = 2
	exitInternal = 3
	exitSigint   = 130
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupted := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Warn().Msg("Received interrupt signal, shutting down...")
		close(interrupted)
		cancel()
	}()

	err := commands.Execute(ctx, Version, Commit, BuildDate)

	select {
	case <-interrupted:
		os.Exit(exitSigint)
	default:
	}

	if err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(commands.ExitCode(err))
	}
	os.Exit(exitOK)
}
