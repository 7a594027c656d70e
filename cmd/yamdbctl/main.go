// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command yamdbctl is the operator CLI for YaMDb.
//
// # Commands
//
//	yamdbctl migrate up
//	yamdbctl migrate down --steps 1
//	yamdbctl createsuperuser --email admin@example.com --username admin
//
// Both commands read DATABASE_URL and MIGRATION_PATH from the environment.
package main

import (
	"fmt"
	"log/slog"
	"os"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})).
		With(slog.String("app", "yamdbctl"))

	if err := newRootCommand(log).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
