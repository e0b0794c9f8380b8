package config

import (
	"fmt"

	"github.com/wellmind/authcore/logger"
	"github.com/wellmind/authcore/password"
	"github.com/wellmind/authcore/server"
	"github.com/wellmind/authcore/store"
	"github.com/wellmind/authcore/token"
)

// BaseConfig contains essential fields every deployment needs.
type BaseConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
}

// ApplyDefaults applies default values to base configuration.
func (c *BaseConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "authcore"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
}

// Validate validates base configuration.
func (c *BaseConfig) Validate() error {
	validEnvs := []string{"development", "staging", "production"}
	for _, v := range validEnvs {
		if c.Environment == v {
			return nil
		}
	}
	return fmt.Errorf("app.environment must be one of [development, staging, production] (got: %s)", c.Environment)
}

// Config is the full service configuration.
type Config struct {
	App      BaseConfig      `yaml:"app" mapstructure:"app"`
	Server   server.Config   `yaml:"server" mapstructure:"server"`
	Store    store.Config    `yaml:"store" mapstructure:"store"`
	Token    token.Config    `yaml:"token" mapstructure:"token"`
	Password password.Config `yaml:"password" mapstructure:"password"`
	Logging  logger.Config   `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults cascades defaults through every section.
func (c *Config) ApplyDefaults() {
	c.App.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Store.ApplyDefaults()
	c.Token.ApplyDefaults()
	c.Password.ApplyDefaults()
	c.Logging.ApplyDefaults()

	// Development boots without an explicit signing key. Production must
	// set one; Validate enforces it.
	if c.Token.Secret == "" && c.App.Environment == "development" {
		c.Token.Secret = "dev-secret-key-change-in-production"
	}
}

// Validate cascades validation through every section.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Token.Validate(); err != nil {
		return err
	}
	if err := c.Password.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
