package speech

import (
	"fmt"
	"log/slog"

	"voice-chat/internal/application"
)

// Provider probes the configured capture device and builds sessions on it.
type Provider struct {
	capture     AudioCapture
	transcriber Transcriber
	logger      *slog.Logger
}

func NewProvider(capture AudioCapture, transcriber Transcriber, logger *slog.Logger) *Provider {
	return &Provider{
		capture:     capture,
		transcriber: transcriber,
		logger:      logger,
	}
}

func (p *Provider) NewRecognizer(cfg application.RecognizerConfig, handler application.RecognitionHandler) (application.Recognizer, error) {
	if p.capture == nil || p.transcriber == nil {
		return nil, fmt.Errorf("%w: no capture source or transcriber configured", application.ErrRecognitionUnsupported)
	}
	if cfg.Continuous || cfg.InterimResults {
		return nil, fmt.Errorf("%w: only single-shot final results are available", application.ErrRecognitionUnsupported)
	}

	if err := p.capture.Open(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", application.ErrRecognitionUnsupported, p.capture.Name(), err)
	}

	p.logger.Info("recognizer created",
		"capture", p.capture.Name(),
		"transcriber", p.transcriber.Name(),
		"language", cfg.Language,
	)

	return NewSession(p.capture, p.transcriber, cfg, handler, p.logger.With("component", "recognizer")), nil
}
