package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := cli.New(cli.Options{}).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
