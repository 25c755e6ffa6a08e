package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays configuration from environment variables using the
// struct tags declared on Config. Unset variables leave the current values
// untouched.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
