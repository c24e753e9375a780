// Package config loads typed configuration structs from environment variables
// using github.com/caarlos0/env with optional .env file support via godotenv.
//
// Each configuration type is parsed at most once per process and cached, so
// packages can declare their own config structs and call Load independently
// without coordinating initialization order.
package config
