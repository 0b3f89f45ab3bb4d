package config

import (
	"os"
)

type Config struct {
	Server ServerConfig
}

type ServerConfig struct {
	Address string
}

func LoadConfig() *Config {
	address := os.Getenv("SERVER_ADDRESS")
	if address == "" {
		address = ":5000"
	}

	return &Config{
		Server: ServerConfig{
			Address: address,
		},
	}
}
