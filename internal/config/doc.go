// Package config provides the scan configuration, its defaults and
// validation, and the optional .gdprscan YAML file with per-site settings.
package config
