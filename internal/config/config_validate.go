// Wayfinder - Collaborative Filtering Recommendations for Travel Content
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wayfinder

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/wayfinder/internal/validation"
)

// Validate checks that required configuration is present and valid.
// Struct tags are checked first, then cross-field rules.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateReport(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateRecommend rejects duplicate algorithms and checks the derived engine config.
func (c *Config) validateRecommend() error {
	seen := make(map[string]bool, len(c.Recommend.Algorithms))
	for _, name := range c.Recommend.Algorithms {
		if seen[name] {
			return fmt.Errorf("recommend.algorithms lists %q more than once", name)
		}
		seen[name] = true
	}

	if err := c.ToEngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

// validateReport checks report entries for blank values.
func (c *Config) validateReport() error {
	for i, user := range c.Report.Users {
		if strings.TrimSpace(user) == "" {
			return fmt.Errorf("report.users[%d] is blank", i)
		}
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

// validateLogLevel validates the log level configuration
func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

// validateLogFormat validates the log format configuration
func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
