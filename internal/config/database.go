package config

import (
	"fmt"
	"time"
)

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"required,gt=0"`
	Name     string `validate:"required"`
	User     string `validate:"required"`
	Password string
	SSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	SlowThreshold time.Duration
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, sslMode)
}

// RedisConfig is optional; an empty Addr keeps dialog state and buyer locks in process.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// LockTTL bounds how long a crashed holder can keep a buyer lock.
	LockTTL time.Duration `validate:"gte=0"`
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}
