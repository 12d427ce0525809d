// Package config resolves tasknotes configuration.
//
// Values are layered: built-in defaults, an optional YAML config file
// ($XDG_CONFIG_HOME/tasknotes/config.yaml or --config), a .env file in the
// working directory, environment variables, and finally command-line flags
// bound by the cmd package.
//
// The developer token is read from AUTH_TOKEN. When it is unset it falls back
// to PlaceholderToken, and ResolveToken reports ErrTokenNotConfigured so that
// no remote call is ever made with the placeholder.
package config
