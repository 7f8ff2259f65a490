package main

import (
	"github.com/charmbracelet/log"

	"tubetext/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}
