package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/trailkeeper/internal/flagx"
	"github.com/dmitrijs2005/trailkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from "false"/empty.
type JsonConfig struct {
	ServerEndpointAddr  string          `json:"server_endpoint_addr"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	DatabaseDSN         string          `json:"database_dsn"`
	GeminiAPIKey        string          `json:"gemini_api_key"`
	GeminiBaseURL       string          `json:"gemini_base_url"`
	SemanticSearch      *bool           `json:"semantic_search"`
	LogFile             string          `json:"log_file"`
	Verbose             *bool           `json:"verbose"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// Without the flag nothing happens; read or decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.DatabaseDSN, jc.DatabaseDSN)
	setString(&cfg.GeminiAPIKey, jc.GeminiAPIKey)
	setString(&cfg.GeminiBaseURL, jc.GeminiBaseURL)
	setString(&cfg.LogFile, jc.LogFile)
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.SemanticSearch != nil {
		cfg.SemanticSearch = *jc.SemanticSearch
	}
	if jc.Verbose != nil {
		cfg.Verbose = *jc.Verbose
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
