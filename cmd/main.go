package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr, os.Exit); err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("mildred failed", slog.Any("error", err))
		os.Exit(1)
	}
}
