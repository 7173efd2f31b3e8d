// Package flightconfig is the scheduler's boot-time configuration: the
// callsign, band, channel and window start minute consumed by the
// scheduler and the radio capability. The scheduler itself never parses
// configuration files (spec Non-goals); this package is the boundary
// between whatever storage layer loads the flash-backed JSON and the
// typed Config the scheduler's Config accepts.
package flightconfig

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Config is the validated boot-time configuration for one flight.
type Config struct {
	Callsign    string `json:"callsign" validate:"required"`
	Band        string `json:"band" validate:"required,oneof=20m 17m 15m 12m 10m"`
	Channel     int    `json:"channel" validate:"gte=0"`
	StartMinute int    `json:"startMinute" validate:"oneof=0 2 4 6 8"`
	Power       int    `json:"power" validate:"gte=0,lte=60"`
}

var validate = validator.New()

// Parse decodes and validates a Config from its on-disk JSON form. A
// Config that fails validation (no callsign, no band, an out-of-range
// start minute) must not let the caller enter flight mode; per spec
// section 7 the caller falls back to a panic-blink loop instead.
func Parse(raw []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("flightconfig: decode: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("flightconfig: invalid: %w", err)
	}
	return cfg, nil
}
