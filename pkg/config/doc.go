// Package config loads environment-driven configuration structs for the
// billing engine (database pool, dedup cache) via caarlos0/env, with .env
// support through godotenv for local development. Each config type is
// parsed once per process and cached.
package config
