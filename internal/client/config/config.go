package config

import "time"

// Config holds runtime settings for the TrailKeeper CLI.
//
// OnlineCheckInterval is a time.Duration (e.g. 3*time.Second). An empty
// GeminiAPIKey disables the embedding pipeline.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	DatabaseDSN         string
	GeminiAPIKey        string
	GeminiBaseURL       string
	SemanticSearch      bool
	LogFile             string
	Verbose             bool
	// OfflineDemo keeps documents in process memory instead of dialling the
	// server.
	OfflineDemo bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.DatabaseDSN = "trailkeeper.db"
	c.GeminiAPIKey = ""
	c.GeminiBaseURL = "https://generativelanguage.googleapis.com"
	c.SemanticSearch = false
	c.LogFile = "trailkeeper.log"
	c.Verbose = false
	c.OfflineDemo = false
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
