// Package config holds the configuration of the product service.
package config

import (
	"fmt"
	"strings"

	"github.com/abgdnv/cafekiosk/pkg/config"
	"github.com/abgdnv/cafekiosk/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type StorageConfig struct {
	Type string `koanf:"type"`
}

func (c *StorageConfig) Validate() error {
	switch c.Type {
	case "":
		c.Type = StoragePostgres
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown storage type %q, expected %q or %q", c.Type, StoragePostgres, StorageMemory)
	}
	return nil
}

// CatalogConfig controls product numbering.
type CatalogConfig struct {
	NumberWidth int `koanf:"numberwidth"`
}

func (c *CatalogConfig) Validate() error {
	if c.NumberWidth < 0 {
		return fmt.Errorf("catalog.numberwidth must not be negative: %d", c.NumberWidth)
	}
	return nil
}

type Config struct {
	HTTPServer config.HTTPConfig           `koanf:"server"`
	Database   config.DatabaseConfig       `koanf:"database"`
	Storage    StorageConfig               `koanf:"storage"`
	Catalog    CatalogConfig               `koanf:"catalog"`
	Log        config.LogConfig            `koanf:"log"`
	PProf      config.PProfConfig          `koanf:"pprof"`
	GRPC       config.GrpcServerConfig     `koanf:"grpc"`
	Shutdown   config.ShutdownConfig       `koanf:"shutdown"`
	NATS       config.NATSConfig           `koanf:"nats"`
	Breaker    config.CircuitBreakerConfig `koanf:"breaker"`
	Telemetry  config.TelemetryConfig      `koanf:"telemetry"`
	Metrics    config.MetricsConfig        `koanf:"metrics"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString("\n--- Server Configuration ---\n")
	b.WriteString(fmt.Sprintf("  server.port: %d\n", c.HTTPServer.Port))
	b.WriteString(fmt.Sprintf("  server.maxheaderbytes: %d\n", c.HTTPServer.MaxHeaderBytes))
	b.WriteString(fmt.Sprintf("  server.timeout.read: %v\n", c.HTTPServer.Timeout.Read))
	b.WriteString(fmt.Sprintf("  server.timeout.write: %v\n", c.HTTPServer.Timeout.Write))
	b.WriteString(fmt.Sprintf("  server.timeout.idle: %v\n", c.HTTPServer.Timeout.Idle))
	b.WriteString(fmt.Sprintf("  server.timeout.readheader: %v\n", c.HTTPServer.Timeout.ReadHeader))

	b.WriteString("\n--- Storage Configuration ---\n")
	b.WriteString(fmt.Sprintf("  storage.type: %s\n", c.Storage.Type))
	b.WriteString(fmt.Sprintf("  database.url: %s\n", config.MaskURL(c.Database.URL)))
	b.WriteString(fmt.Sprintf("  database.timeout: %s\n", c.Database.Timeout))
	b.WriteString(fmt.Sprintf("  database.migrate: %t\n", c.Database.Migrate))
	b.WriteString(fmt.Sprintf("  catalog.numberwidth: %d\n", c.Catalog.NumberWidth))

	b.WriteString("\n--- gRPC Configuration ---\n")
	b.WriteString(fmt.Sprintf("  grpc.port: %s\n", c.GRPC.Port))
	b.WriteString(fmt.Sprintf("  grpc.reflection: %t\n", c.GRPC.ReflectionEnabled))
	b.WriteString(fmt.Sprintf("  grpc.healthinterval: %s\n", c.GRPC.HealthInterval))

	b.WriteString(c.NATS.String())
	b.WriteString(c.Breaker.String())
	b.WriteString(c.Telemetry.String())

	b.WriteString("\n--- Observability & Logging ---\n")
	b.WriteString(fmt.Sprintf("  log.level: %s\n", c.Log.Level))
	b.WriteString(fmt.Sprintf("  metrics.enabled: %t\n", c.Metrics.Enabled))
	b.WriteString(fmt.Sprintf("  metrics.path: %s\n", c.Metrics.Path))
	b.WriteString(fmt.Sprintf("  pprof.enabled: %t\n", c.PProf.Enabled))
	b.WriteString(fmt.Sprintf("  pprof.address: %s\n", c.PProf.Addr))

	b.WriteString("\n--- Application Behavior ---\n")
	b.WriteString(fmt.Sprintf("  shutdown.timeout: %s\n", c.Shutdown.Timeout))

	return b.String()
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if c.Storage.Type == StoragePostgres {
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}
	validators := []configloader.Validator{
		&c.Catalog, &c.Log, &c.PProf, &c.GRPC, &c.Shutdown, &c.NATS, &c.Telemetry, &c.Metrics,
	}
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	if c.NATS.Enabled {
		if err := c.Breaker.Validate(); err != nil {
			return err
		}
	}
	return nil
}
