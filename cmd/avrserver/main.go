package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/abates/denonavr"
	"github.com/abates/denonavr/api"
	"github.com/abates/denonavr/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if err != nil {
		log.Warn().Str("level", cfg.Level).Msg("Unknown log level, using info")
	}
}

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.Logging)

	model, err := cfg.Model()
	if err != nil {
		log.Fatal().Err(err).Msg("Unknown receiver model")
	}

	avr, err := denonavr.Open(cfg.Serial.Port, cfg.Serial.Baud, model,
		denonavr.LoggerOption(log.With().Str("component", "receiver").Logger()),
		denonavr.TimeoutOption(cfg.Receiver.Timeout),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open receiver")
	}
	defer avr.Close()

	log.Info().
		Str("model", model.Name).
		Str("port", cfg.Serial.Port).
		Int("baud", cfg.Serial.Baud).
		Str("addr", cfg.Addr()).
		Msg("Receiver is setup, starting API")

	srv := &http.Server{
		Handler:      api.New(avr, log.With().Str("component", "api").Logger()),
		Addr:         cfg.Addr(),
		WriteTimeout: cfg.API.WriteTimeout,
		ReadTimeout:  cfg.API.ReadTimeout,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Error().Err(err).Msg("API server stopped")
	}
}
