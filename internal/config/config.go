// Package config reads witnetd's process configuration from the
// environment, following the teacher's requireEnv/getEnvOrDefault split
// between credentials (always required, never defaulted) and everything
// else (safe to default).
package config

import (
	"log"
	"os"
)

// Config is every environment-sourced setting cmd/witnetd needs to wire
// up storage, the RPC surface, and the consensus constants profile.
type Config struct {
	DatabaseURL string
	RPCPort     string
	NetworkName string // selects the consensus constants profile; cmd/witnetd only recognizes "mainnet"
	DataDir     string
}

// Load reads Config from the environment, exiting the process via
// requireEnv if a required value is missing.
func Load() Config {
	return Config{
		DatabaseURL: requireEnv("DATABASE_URL"),
		RPCPort:     getEnvOrDefault("WITNET_RPC_PORT", "21338"),
		NetworkName: getEnvOrDefault("WITNET_NETWORK", "mainnet"),
		DataDir:     getEnvOrDefault("WITNET_DATA_DIR", "./.witnet"),
	}
}

// requireEnv reads a required environment variable and exits if it is
// not set. This prevents the binary from starting with missing critical
// configuration.
func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("FATAL: required environment variable %s is not set", key)
	}
	return val
}

// getEnvOrDefault returns the env var value or a safe default for
// non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
