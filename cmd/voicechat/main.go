package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"voice-chat/config"
	"voice-chat/internal/application"
	"voice-chat/internal/infra/audio"
	"voice-chat/internal/infra/chat"
	"voice-chat/internal/infra/httpui"
	"voice-chat/internal/infra/openai"
	"voice-chat/internal/infra/playback"
	"voice-chat/internal/infra/speech"
	"voice-chat/internal/infra/terminal"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults are used when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log, cfg.TerminalEnabled())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	provider := speech.NewProvider(
		createCapture(cfg.Speech, logger),
		createTranscriber(cfg, logger),
		logger.With("component", "speech"),
	)

	backend := chat.NewClient(cfg.Chat.BaseURL, cfg.Chat.Path, cfg.Chat.Timeout, logger.With("component", "chat"))

	player, err := createPlayer(cfg.Playback, logger)
	if err != nil {
		logger.Error("creating player", "error", err)
		os.Exit(1)
	}

	opts := application.DefaultOptions()
	opts.Recognizer.Language = cfg.Speech.Language
	opts.ReportPlaybackErrors = cfg.Playback.ReportErrors

	controller := application.NewController(provider, backend, player, logger.With("component", "controller"), opts)

	if cfg.UI.HTTPAddr != "" {
		panel := httpui.NewPanel(httpui.Config{
			Addr:       cfg.UI.HTTPAddr,
			AuthToken:  cfg.UI.AuthToken,
			TrustProxy: cfg.UI.TrustProxy,
		}, controller, logger.With("component", "httpui"))
		if err := panel.Start(ctx); err != nil {
			logger.Error("starting HTTP panel", "error", err)
			os.Exit(1)
		}
		defer panel.Stop()
	}

	if cfg.TerminalEnabled() {
		ui := terminal.New(controller, os.Stdin, os.Stdout, logger.With("component", "terminal"))
		go func() {
			if err := ui.Run(ctx); err == nil {
				cancel()
			}
		}()
	}

	logger.Info("starting voice chat",
		"chat_url", cfg.Chat.BaseURL+cfg.Chat.Path,
		"speech_source", cfg.Speech.Source,
		"transcriber", cfg.Speech.Transcriber,
		"playback", cfg.Playback.Mode,
	)

	if err := controller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("controller error", "error", err)
		os.Exit(1)
	}
}

func createCapture(cfg config.SpeechConfig, logger *slog.Logger) speech.AudioCapture {
	switch cfg.Source {
	case "file":
		return audio.NewFileSource(cfg.FileDir)
	default:
		return audio.NewMicrophone(audio.CaptureConfig{
			SampleRate:       cfg.SampleRate,
			SilenceThreshold: int16(cfg.SilenceThreshold),
			SilenceDuration:  cfg.SilenceDuration,
			MaxDuration:      cfg.MaxDuration,
		}, logger.With("component", "microphone"))
	}
}

// createTranscriber returns nil when the transcriber cannot be built; the
// provider then reports recognition as unsupported.
func createTranscriber(cfg *config.Config, logger *slog.Logger) speech.Transcriber {
	switch cfg.Speech.Transcriber {
	case "exec":
		t, err := speech.NewExecTranscriber(cfg.Speech.Command)
		if err != nil {
			logger.Warn("exec transcriber unavailable", "error", err)
			return nil
		}
		return t
	default:
		if cfg.OpenAI.APIKey == "" && cfg.OpenAI.BaseURL == "" {
			logger.Warn("openai.api_key is not set, speech recognition disabled")
			return nil
		}
		return openai.NewWhisperClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
	}
}

func createPlayer(cfg config.PlaybackConfig, logger *slog.Logger) (application.Player, error) {
	switch cfg.Mode {
	case "speaker":
		return audio.NewSpeaker(logger.With("component", "speaker")), nil
	case "none":
		return &application.NoopPlayer{}, nil
	default:
		return playback.NewExecPlayer(cfg.Command, logger.With("component", "player"))
	}
}

// setupLogger writes to stderr while the terminal UI owns stdout.
func setupLogger(cfg config.LogConfig, terminalUI bool) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	out := os.Stdout
	if terminalUI {
		out = os.Stderr
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler)
}
