package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/saasbase-io/saasbase/internal/pkg/application"
	"github.com/saasbase-io/saasbase/internal/pkg/env"
)

func main() {
	app := application.New()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Println("shutting down...")
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "8080"))
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}
