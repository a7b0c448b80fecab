package config

import "time"

type ServerConfig struct {
	HTTP HTTPConfig `validate:"required"`
}

type HTTPConfig struct {
	Host            string
	Port            int `validate:"required,gt=0"`
	ShutdownTimeout time.Duration
}
