package speech

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"voice-chat/internal/application"
	"voice-chat/internal/domain"
)

var ErrClosed = errors.New("recognizer closed")

// Session is a reusable single-shot recognizer. Each Start records one
// utterance, transcribes it and reports start, result or error, then end.
type Session struct {
	capture     AudioCapture
	transcriber Transcriber
	cfg         application.RecognizerConfig
	handler     application.RecognitionHandler
	logger      *slog.Logger

	mu     sync.Mutex
	active bool
	closed bool
	stop   chan struct{}
	cancel context.CancelFunc
	// last is closed once the previous run has emitted its end event.
	last chan struct{}
	wg   sync.WaitGroup
}

func NewSession(
	capture AudioCapture,
	transcriber Transcriber,
	cfg application.RecognizerConfig,
	handler application.RecognitionHandler,
	logger *slog.Logger,
) *Session {
	return &Session{
		capture:     capture,
		transcriber: transcriber,
		cfg:         cfg,
		handler:     handler,
		logger:      logger,
	}
}

func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.active {
		return application.ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan struct{})
	s.active = true
	s.stop = stop
	s.cancel = cancel

	prev := s.last
	done := make(chan struct{})
	s.last = done

	s.wg.Add(1)
	go s.run(ctx, cancel, uuid.NewString(), stop, prev, done)
	return nil
}

// Stop ends the recording early. Audio captured so far is still transcribed.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active || s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}

// Close aborts any active session and releases the capture device.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return s.capture.Close()
}

// run records and transcribes one utterance. The session is released before
// the final events are emitted so a handler may Start again right away; the
// next run waits on prev so events of consecutive sessions never interleave.
func (s *Session) run(ctx context.Context, cancel context.CancelFunc, id string, stop <-chan struct{}, prev <-chan struct{}, done chan<- struct{}) {
	defer s.wg.Done()
	defer close(done)
	defer cancel()

	if prev != nil {
		<-prev
	}

	logger := s.logger.With("session", id)
	s.emit(domain.RecognitionEvent{Type: domain.RecognitionStart, SessionID: id})

	text, code, err := s.recognize(ctx, stop)

	s.mu.Lock()
	s.active = false
	if s.stop == stop {
		s.stop = nil
	}
	s.mu.Unlock()

	switch {
	case code != "":
		msg := ""
		if err != nil {
			msg = err.Error()
		}
		logger.Warn("recognition failed", "code", code, "error", err)
		s.emit(domain.RecognitionEvent{Type: domain.RecognitionError, SessionID: id, Code: code, Message: msg})
	default:
		logger.Debug("recognized", "text", text)
		s.emit(domain.RecognitionEvent{
			Type:      domain.RecognitionResult,
			SessionID: id,
			Results: []domain.Utterance{
				{Alternatives: []domain.Alternative{{Transcript: text}}, Final: true},
			},
		})
	}

	s.emit(domain.RecognitionEvent{Type: domain.RecognitionEnd, SessionID: id})
}

func (s *Session) recognize(ctx context.Context, stop <-chan struct{}) (string, domain.RecognitionErrorCode, error) {
	audio, err := s.capture.Record(ctx, stop)
	if err != nil {
		if ctx.Err() != nil {
			return "", domain.ErrorAborted, err
		}
		return "", domain.ErrorAudioCapture, err
	}
	if len(audio) == 0 {
		return "", domain.ErrorNoSpeech, nil
	}

	s.logger.Debug("captured utterance", "source", s.capture.Name(), "bytes", len(audio))

	text, err := s.transcriber.Transcribe(ctx, audio, s.cfg.Language)
	if err != nil {
		if ctx.Err() != nil {
			return "", domain.ErrorAborted, err
		}
		return "", domain.ErrorNetwork, err
	}
	if text == "" {
		return "", domain.ErrorNoSpeech, nil
	}
	return text, "", nil
}

func (s *Session) emit(ev domain.RecognitionEvent) {
	if s.handler != nil {
		s.handler(ev)
	}
}
