// Package config loads railskit configuration files.
//
// It uses Viper to read YAML, JSON or TOML files and to overlay environment
// variables, and godotenv to load an optional .env file first.
//
// # Usage
//
//	var m resource.Manifest
//	err := config.Load("resources.yml", &m)
//
// Environment variables override file values using the RAILSKIT_ prefix with
// underscore-separated paths (e.g. RAILSKIT_CLIENT_BASE_URL overrides
// client.base_url). Viper lowercases map keys, so header names and default
// parameter names read from files arrive in lower case.
package config
