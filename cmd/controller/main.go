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
	mock := pflag.Bool("mock", false, "use synthetic sticks instead of the ADC")
	pflag.Parse()

	log.Println("starting dualstick controller")

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunController(*mock); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
