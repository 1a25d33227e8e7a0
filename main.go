package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Yuhamixli/voice-input-assistant/internal/app"
	"github.com/Yuhamixli/voice-input-assistant/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	overrides := config.RegisterFlags()
	flag.Parse()

	config.LoadEnvFiles()

	path := *configPath
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}

	if path == "" && !overrides.Any() {
		// First run: write an editable config and stop so the user
		// can fill in the transcription endpoint.
		if err := config.SaveDefault("config.json"); err != nil {
			fmt.Fprintf(os.Stderr, "cannot write config.json: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("wrote config.json; set transcribe.endpoint (or ASR_ENDPOINT) and run again")
		return
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	overrides.Merge(&cfg)
	if err := config.Validate(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	log, err := app.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := app.New(cfg, log).Run(); err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
}
