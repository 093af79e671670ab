package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"pocket-arena/server/internal/app"
)

func main() {
	var clientDir string
	flag.StringVar(&clientDir, "client", "", "directory of static client files to serve")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, app.Config{ClientDir: clientDir}); err != nil {
		log.Fatalf("%v", err)
	}
}
