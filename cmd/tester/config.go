package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// RELAY_URL points at the running relay's WebSocket endpoint.
	RelayURL string `envconfig:"RELAY_URL" default:"ws://localhost:4600/ws"`
	// RELAY_TESTER_COLOURS enables colorized output for better readability.
	Colours bool `envconfig:"RELAY_TESTER_COLOURS" default:"true"`
	// RELAY_TESTER_TIMEOUT bounds each wait for an expected event.
	Timeout time.Duration `envconfig:"RELAY_TESTER_TIMEOUT" default:"5s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
