// Package config loads runtime configuration for the lphoto client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the photo service
//	-d string   path of the local database
//	-l string   log level: debug, info, warn or error
//	-t int      per-request timeout in seconds; 0 disables it
//
// # File schema
//
// Durations use timex.Duration, so they may be strings like "30s" or integer
// nanoseconds:
//
//	server_url: https://photos.example.com
//	database_path: /home/me/.lphoto/client.db
//	log_level: info
//	request_timeout: 30s
package config
