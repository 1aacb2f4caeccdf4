// Package config holds the configuration of the catalog service.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/abgdnv/gocatalog/pkg/config"
	"github.com/abgdnv/gocatalog/pkg/config/configloader"
)

const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

var drivers = []string{DriverFile, DriverMemory, DriverPostgres, DriverRedis}

var _ configloader.Validator = (*Config)(nil)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Grpc       config.GrpcServerConfig `koanf:"grpc"`
	Storage    StorageConfig           `koanf:"storage"`
	Database   config.DatabaseConfig   `koanf:"database"`
	Redis      config.RedisConfig      `koanf:"redis"`
	Notify     NotifyConfig            `koanf:"notify"`
	Resilience config.ResilienceConfig `koanf:"resilience"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
}

// StorageConfig selects where the product and cart documents live.
// For the file driver Products and Carts are file paths, otherwise document names.
type StorageConfig struct {
	Driver   string `koanf:"driver"`
	Products string `koanf:"products"`
	Carts    string `koanf:"carts"`
}

type NotifyConfig struct {
	Websocket bool              `koanf:"websocket"`
	Nats      config.NATSConfig `koanf:"nats"`
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Grpc.String())

	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  storage.driver: %s\n", c.Storage.Driver))
	b.WriteString(fmt.Sprintf("  storage.products: %s\n", c.Storage.Products))
	b.WriteString(fmt.Sprintf("  storage.carts: %s\n", c.Storage.Carts))
	switch c.Storage.Driver {
	case DriverPostgres:
		b.WriteString(c.Database.String())
	case DriverRedis:
		b.WriteString(c.Redis.String())
	}

	b.WriteString("\n--- Notifications ---\n")
	b.WriteString(fmt.Sprintf("  notify.websocket: %t\n", c.Notify.Websocket))
	b.WriteString(c.Notify.Nats.String())
	if c.Notify.Nats.Enabled {
		b.WriteString(c.Resilience.String())
	}

	b.WriteString(c.Telemetry.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid.
// Blocks of disabled features are not checked.
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Grpc.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case DriverPostgres:
		if err := c.Database.Validate(); err != nil {
			return err
		}
	case DriverRedis:
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	}
	if err := c.Notify.Nats.Validate(); err != nil {
		return err
	}
	if c.Notify.Nats.Enabled {
		if err := c.Resilience.Validate(); err != nil {
			return err
		}
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	return nil
}

func (c *StorageConfig) Validate() error {
	if !slices.Contains(drivers, c.Driver) {
		return fmt.Errorf("unknown storage driver %q, expected one of %v", c.Driver, drivers)
	}
	if c.Products == "" || c.Carts == "" {
		return fmt.Errorf("storage.products and storage.carts must be configured")
	}
	if c.Products == c.Carts {
		return fmt.Errorf("products and carts cannot share the document %q", c.Products)
	}
	return nil
}
