// Package config loads typed configuration structs from environment
// variables.
//
// Each component declares its own Config struct with `env` tags and calls
// Load (or MustLoad during bootstrap). A .env file in the working directory
// is picked up automatically for local development; production deployments
// rely on real environment variables.
//
//	type Config struct {
//		Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
package config
