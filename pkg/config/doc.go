// Package config loads typed configuration structs from environment
// variables, with an optional .env file for local development.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11 and
// caches each parsed configuration type for the lifetime of the process,
// so every component can call Load for its own Config without re-reading
// the environment.
//
//	type Config struct {
//	    Port int `env:"PORT" envDefault:"8080"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
package config
