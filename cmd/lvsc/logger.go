package main

import (
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
)

// initLogger wires apex/log to a text handler on stdout, with the
// level taken from config (default "info").
func initLogger() {
	log.SetHandler(text.New(os.Stdout))
	level, err := log.ParseLevel(configStringDefault("log.level", "info"))
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
