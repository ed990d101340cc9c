package main

import (
	"log"

	"github.com/NehaTanti-afk/Neha-Notes/app"
)

func main() {
	application, err := app.NewApp().WithAutoConfig().Build()
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}
