package store

import "fmt"

// Driver selects the AccountStore implementation.
type Driver string

const (
	// DriverMongo persists accounts in MongoDB.
	DriverMongo Driver = "mongo"
	// DriverMemory keeps accounts in process memory. Data does not survive
	// a restart; intended for tests and local development.
	DriverMemory Driver = "memory"
)

// Config holds account-store configuration.
type Config struct {
	Driver     Driver `yaml:"driver" mapstructure:"driver"`
	URI        string `yaml:"uri" mapstructure:"uri"`
	Database   string `yaml:"database" mapstructure:"database"`
	Collection string `yaml:"collection" mapstructure:"collection"`

	// ConnectTimeout bounds the initial connect+ping, in seconds.
	ConnectTimeout int `yaml:"connect_timeout" mapstructure:"connect_timeout"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverMongo
	}
	if c.URI == "" {
		c.URI = "mongodb://localhost:27017"
	}
	if c.Database == "" {
		c.Database = "mental_wellness_db"
	}
	if c.Collection == "" {
		c.Collection = "users"
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 10
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("store.driver must be one of [mongo, memory] (got: %s)", c.Driver)
	}
	if c.Driver == DriverMongo && c.URI == "" {
		return fmt.Errorf("store.uri is required for the mongo driver")
	}
	if c.ConnectTimeout < 0 {
		return fmt.Errorf("store.connect_timeout must be non-negative (got: %d)", c.ConnectTimeout)
	}
	return nil
}
