// Package config holds the runtime settings of a peerchat instance: defaults,
// TOML and YAML file loading, validation and logrus setup.
//
// Settings are layered: Default, then a config file, then command-line flags.
//
//	# peerchat.toml
//	port = 4322
//	capacity = 10
//	framing = "raw"
//	log_level = "info"
//	metrics_addr = "127.0.0.1:9100"
package config
