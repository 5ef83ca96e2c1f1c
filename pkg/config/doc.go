// Package config loads typed configuration structs from environment
// variables. Each package that needs configuration declares its own struct
// with `env` tags and loads it through Load or MustLoad; a .env file in the
// working directory is picked up automatically for local development.
package config
