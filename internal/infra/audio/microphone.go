//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// Microphone records single utterances from the default input device.
type Microphone struct {
	cfg    CaptureConfig
	logger *slog.Logger
}

func NewMicrophone(cfg CaptureConfig, logger *slog.Logger) *Microphone {
	return &Microphone{cfg: cfg, logger: logger}
}

func (m *Microphone) Name() string {
	return "microphone"
}

func (m *Microphone) Open() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}
	return nil
}

func (m *Microphone) Close() error {
	return portaudio.Terminate()
}

// Record captures until the utterance ends, stop is closed or ctx is done.
// It returns an empty result when no speech was heard.
func (m *Microphone) Record(ctx context.Context, stop <-chan struct{}) ([]byte, error) {
	buffer := make([]int16, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.cfg.SampleRate), len(buffer), buffer)
	if err != nil {
		return nil, fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("starting stream: %w", err)
	}
	defer stream.Stop()

	m.logger.Debug("microphone recording", "sampleRate", m.cfg.SampleRate)

	endpointer := NewEndpointer(m.cfg)
	samples := make([]int16, 0, m.cfg.SampleRate*5)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-stop:
			return m.finish(samples, endpointer)
		default:
		}

		if err := stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from stream: %w", err)
		}
		samples = append(samples, buffer...)

		if endpointer.Push(buffer) {
			return m.finish(samples, endpointer)
		}
	}
}

func (m *Microphone) finish(samples []int16, endpointer *Endpointer) ([]byte, error) {
	if !endpointer.HeardSpeech() {
		return nil, nil
	}
	return EncodeWAV(PCM{Samples: samples, SampleRate: m.cfg.SampleRate, Channels: 1})
}
