package main

import (
	"log/slog"
	"os"
)

var (
	version = "dev"     // Set at build time via -ldflags "-X main.version=version"
	commit  = "none"    // Set at build time via -ldflags "-X main.commit=commit"
	date    = "unknown" // Set at build time via -ldflags "-X main.date=date"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("sidebars failed", "error", err)
		os.Exit(1)
	}
}
