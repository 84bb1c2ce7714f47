package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/trailkeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. os.Args is
// filtered with flagx.FilterArgs first, so unrelated flags are ignored.
// Invalid values panic.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-i", "-d", "-g", "-b", "-l"},
		"-s", "-v", "-o")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "local database file")
	fs.StringVar(&cfg.GeminiAPIKey, "g", cfg.GeminiAPIKey, "Gemini API key")
	fs.StringVar(&cfg.GeminiBaseURL, "b", cfg.GeminiBaseURL, "Gemini base URL")
	fs.BoolVar(&cfg.SemanticSearch, "s", cfg.SemanticSearch, "use semantic search when online")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "mirror log to stderr")
	fs.BoolVar(&cfg.OfflineDemo, "o", cfg.OfflineDemo, "keep remote documents in memory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
