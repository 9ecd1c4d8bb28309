package config

import (
	"flag"
	"os"

	"platescout/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   path of the embedded database file
//	-r string   base URL of the remote document API
//	-k string   API key for the remote document API
//
// Arguments are filtered to the flags handled here, so other components can
// define their own without interference.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-r", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path of the embedded database file")
	fs.StringVar(&cfg.RemoteBaseURL, "r", cfg.RemoteBaseURL, "base URL of the remote document API")
	fs.StringVar(&cfg.RemoteAPIKey, "k", cfg.RemoteAPIKey, "API key for the remote document API")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
