// Command bitmapbench designs and runs roaring bitmap benchmark batches.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Printf("bitmapbench: %v", err)
		stop()
		os.Exit(1)
	}
}
