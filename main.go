package main

import (
	"fmt"
	"log"

	"github.com/saasbase-io/saasbase/internal/pkg/application"
	"github.com/saasbase-io/saasbase/internal/pkg/env"
)

func main() {
	app := application.New()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "8080")))
	log.Fatal(err)
}
