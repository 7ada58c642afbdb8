// Package config manages host settings stored at ~/.exthost/config.yaml and
// overridable with EXTHOST_* environment variables: extension directories,
// the listen address, auth and logging.
package config
