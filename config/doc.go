// Package config loads service configuration from YAML files, .env files,
// and environment variables, in that order of precedence (later wins).
// Every section defaults sensibly so a bare environment boots a local
// development setup.
package config
