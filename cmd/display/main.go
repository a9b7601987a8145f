// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"log"

	"github.com/spf13/pflag"

	"github.com/relabs-tech/dualstick/internal/app"
	"github.com/relabs-tech/dualstick/internal/config"
)

func main() {
	configPath := pflag.StringP("config", "c", "dualstick_config.txt", "path to the KEY=VALUE config file")
	pflag.Parse()

	log.Println("starting dualstick status display (MQTT subscriber)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunDisplay(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
