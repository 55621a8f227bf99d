package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// Database validation
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, errors.New("database.port must be between 1 and 65535"))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("database.name is required"))
	}
	if c.Database.MaxConnections <= 0 {
		errs = append(errs, errors.New("database.max_connections must be positive"))
	}

	// Telemetry validation
	if c.Telemetry.TickInterval <= 0 {
		errs = append(errs, errors.New("telemetry.tick_interval must be positive"))
	}
	if c.Telemetry.SnapshotInterval < c.Telemetry.TickInterval {
		errs = append(errs, errors.New("telemetry.snapshot_interval must be >= tick_interval"))
	}
	if c.Telemetry.InactivityTimeout <= 0 {
		errs = append(errs, errors.New("telemetry.inactivity_timeout must be positive"))
	}

	seen := make(map[string]bool)
	validPins := map[string]bool{"": true, "active": true, "inactive": true, "offline": true}
	for _, u := range c.Telemetry.Units {
		if u.ID == "" {
			errs = append(errs, errors.New("telemetry.units entries require an id"))
			continue
		}
		if seen[u.ID] {
			errs = append(errs, fmt.Errorf("telemetry.units contains duplicate id %q", u.ID))
		}
		seen[u.ID] = true
		if !validPins[u.Pinned] {
			errs = append(errs, fmt.Errorf("telemetry.units %q: pinned must be active, inactive or offline", u.ID))
		}
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.App.Mode == "production" && c.API.JWTSecret == "change-me-in-production" {
		errs = append(errs, errors.New("api.jwt_secret must be changed in production"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
