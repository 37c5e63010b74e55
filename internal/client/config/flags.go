package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/gigbook/internal/flagx"
)

// parseFlags overlays cfg with command-line flags:
//
//	-u string   API base URL
//	-e string   environment: production, development, emulator, device
//	-d string   data directory
//	-t int      HTTP timeout in seconds
//	-l string   log level
//	-offline    run without the remote API
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-u", "-e", "-d", "-t", "-l", "-offline"}, "-offline")

	fs := flag.NewFlagSet("gigbook", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BaseURL, "u", cfg.BaseURL, "API base URL")
	fs.StringVar(&cfg.Environment, "e", cfg.Environment, "environment")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.Offline, "offline", cfg.Offline, "run without the remote API")
	timeout := fs.Int("t", int(cfg.HTTPTimeout.Seconds()), "HTTP timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.HTTPTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
