// Package config loads runtime configuration for the TrailKeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-i int      online status check interval (seconds)
//	-d string   local SQLite database file
//	-g string   Gemini API key (empty disables embeddings)
//	-b string   Gemini base URL
//	-s          use semantic search when online
//	-l string   log file
//	-v          also log to stderr
//	-o          offline demo: keep remote documents in memory
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "database_dsn": "trailkeeper.db",
//	  "gemini_api_key": "",
//	  "semantic_search": true,
//	  "log_file": "trailkeeper.log"
//	}
//
// Keys absent from the file keep their defaults.
package config
