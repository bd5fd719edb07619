package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := executeContext(ctx, os.Args[1:], os.Stdout); err != nil {
		os.Exit(1)
	}
}
