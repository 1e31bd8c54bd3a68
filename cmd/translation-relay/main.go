// Package main — точка входа translation-relay (HTTP + WebSocket).
package main

import (
	"log"

	"github.com/eyepyon/waiwine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
