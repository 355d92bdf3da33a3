package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"voice-chat/internal/domain"
)

type Options struct {
	Recognizer RecognizerConfig
	// ReportPlaybackErrors surfaces playback failures in the error text
	// instead of only logging them.
	ReportPlaybackErrors bool
}

func DefaultOptions() Options {
	return Options{Recognizer: DefaultRecognizerConfig()}
}

// Controller owns the voice chat state. All state transitions run on the
// goroutine executing Run; the exported methods only enqueue work for it.
type Controller struct {
	provider RecognizerProvider
	backend  ChatBackend
	player   Player
	logger   *slog.Logger
	opts     Options

	events chan event
	done   chan struct{}

	mu    sync.RWMutex
	state domain.State
	subs  map[chan domain.State]struct{}

	// Owned by the Run goroutine.
	recognizer Recognizer
	// mountErr is the recognizer setup failure. It stays in front of every
	// later error since speech input never becomes available.
	mountErr   string
	generation uint64
	cancelSend context.CancelFunc
}

type event interface{}

type (
	startEvent       struct{}
	stopEvent        struct{}
	toggleEvent      struct{}
	recognitionEvent struct{ domain.RecognitionEvent }
	textEvent        struct{ text string }
	backendDoneEvent struct {
		generation uint64
		audio      []byte
		err        error
	}
	playbackFailedEvent struct{ err error }
)

func NewController(
	provider RecognizerProvider,
	backend ChatBackend,
	player Player,
	logger *slog.Logger,
	opts Options,
) *Controller {
	if player == nil {
		player = &NoopPlayer{}
	}
	return &Controller{
		provider: provider,
		backend:  backend,
		player:   player,
		logger:   logger,
		opts:     opts,
		events:   make(chan event, 64),
		done:     make(chan struct{}),
		subs:     make(map[chan domain.State]struct{}),
	}
}

// Run creates the recognizer session and processes events until ctx is
// done. It must be called exactly once.
func (c *Controller) Run(ctx context.Context) error {
	c.mount()
	defer func() {
		close(c.done)
		c.unmount()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			c.handle(ctx, ev)
		}
	}
}

func (c *Controller) StartListening() { c.post(startEvent{}) }
func (c *Controller) StopListening()  { c.post(stopEvent{}) }

// Toggle is the primary button: stop while listening, otherwise start unless
// the button is disabled.
func (c *Controller) Toggle() { c.post(toggleEvent{}) }

// SubmitText sends typed text through the same path as a recognized
// utterance.
func (c *Controller) SubmitText(text string) { c.post(textEvent{text: text}) }

// State returns a copy of the current state.
func (c *Controller) State() domain.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe returns a channel receiving the state after every change. Slow
// readers only see the latest state. The returned func unsubscribes.
func (c *Controller) Subscribe() (<-chan domain.State, func()) {
	ch := make(chan domain.State, 1)

	c.mu.Lock()
	c.subs[ch] = struct{}{}
	ch <- c.state
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, ch)
			close(ch)
			c.mu.Unlock()
		})
	}
}

func (c *Controller) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

func (c *Controller) mount() {
	rec, err := c.provider.NewRecognizer(c.opts.Recognizer, c.onRecognition)
	if err != nil {
		if errors.Is(err, ErrRecognitionUnsupported) {
			c.logger.Warn("speech recognition unavailable", "error", err)
			c.mountErr = domain.MessageUnsupported
		} else {
			c.logger.Error("creating recognizer", "error", err)
			c.mountErr = domain.RecognitionErrorPrefix + err.Error()
		}
		c.update(func(s *domain.State) { s.Error = c.mountErr })
		return
	}
	c.recognizer = rec
	c.logger.Info("speech recognition ready", "language", c.opts.Recognizer.Language)
}

func (c *Controller) unmount() {
	if c.cancelSend != nil {
		c.cancelSend()
		c.cancelSend = nil
	}
	if c.recognizer != nil {
		if err := c.recognizer.Close(); err != nil {
			c.logger.Warn("closing recognizer", "error", err)
		}
	}
}

func (c *Controller) onRecognition(ev domain.RecognitionEvent) {
	c.post(recognitionEvent{ev})
}

func (c *Controller) handle(ctx context.Context, ev event) {
	switch e := ev.(type) {
	case startEvent:
		c.startListening()
	case stopEvent:
		c.stopListening()
	case toggleEvent:
		view := Render(c.State())
		switch {
		case view.Button.Listening:
			c.stopListening()
		case !view.Button.Disabled:
			c.startListening()
		}
	case recognitionEvent:
		c.handleRecognition(ctx, e.RecognitionEvent)
	case textEvent:
		text := strings.TrimSpace(e.text)
		if text == "" {
			return
		}
		c.logger.Info("received text input", "text", text)
		c.update(func(s *domain.State) {
			s.Transcript = text
			s.Response = ""
		})
		c.send(ctx, text)
	case backendDoneEvent:
		c.handleBackendDone(ctx, e)
	case playbackFailedEvent:
		c.update(func(s *domain.State) { s.Error = c.errorText(domain.PlaybackErrorPrefix + e.err.Error()) })
	}
}

func (c *Controller) startListening() {
	if c.recognizer == nil {
		return
	}
	c.update(func(s *domain.State) {
		s.Transcript = ""
		s.Response = ""
	})
	if err := c.recognizer.Start(); err != nil {
		c.logger.Warn("starting recognition", "error", err)
		c.update(func(s *domain.State) { s.Error = domain.RecognitionErrorPrefix + err.Error() })
	}
}

func (c *Controller) stopListening() {
	if c.recognizer == nil {
		return
	}
	if err := c.recognizer.Stop(); err != nil {
		c.logger.Warn("stopping recognition", "error", err)
	}
}

func (c *Controller) handleRecognition(ctx context.Context, ev domain.RecognitionEvent) {
	switch ev.Type {
	case domain.RecognitionStart:
		c.logger.Debug("recognition started", "session", ev.SessionID)
		c.update(func(s *domain.State) {
			s.Listening = true
			s.Error = ""
		})

	case domain.RecognitionResult:
		text, ok := ev.TopTranscript()
		if !ok {
			c.logger.Warn("recognition result without alternatives", "session", ev.SessionID)
			c.update(func(s *domain.State) { s.Listening = false })
			return
		}
		c.logger.Info("transcribed", "session", ev.SessionID, "text", text)
		c.update(func(s *domain.State) {
			s.Transcript = text
			s.Listening = false
		})
		c.send(ctx, text)

	case domain.RecognitionError:
		c.logger.Warn("recognition error", "session", ev.SessionID, "code", ev.Code, "message", ev.Message)
		c.update(func(s *domain.State) {
			s.Listening = false
			s.Error = domain.RecognitionErrorPrefix + string(ev.Code)
		})

	case domain.RecognitionEnd:
		c.logger.Debug("recognition ended", "session", ev.SessionID)
		c.update(func(s *domain.State) { s.Listening = false })
	}
}

// send starts the backend call for text. A call still in flight is cancelled
// and its completion ignored.
func (c *Controller) send(ctx context.Context, text string) {
	if c.cancelSend != nil {
		c.logger.Debug("cancelling in-flight chat request", "generation", c.generation)
		c.cancelSend()
	}
	c.generation++
	generation := c.generation

	sendCtx, cancel := context.WithCancel(ctx)
	c.cancelSend = cancel

	c.update(func(s *domain.State) {
		s.Loading = true
		s.Error = c.errorText("")
	})

	go func() {
		audio, err := c.backend.Send(sendCtx, text)
		c.post(backendDoneEvent{generation: generation, audio: audio, err: err})
	}()
}

func (c *Controller) handleBackendDone(ctx context.Context, e backendDoneEvent) {
	if e.generation != c.generation {
		c.logger.Debug("dropping stale chat response", "generation", e.generation, "current", c.generation)
		return
	}
	c.cancelSend()
	c.cancelSend = nil

	if e.err != nil {
		c.logger.Error("chat request failed", "error", e.err)
		c.update(func(s *domain.State) {
			s.Error = c.errorText(domain.BackendErrorPrefix + e.err.Error())
			s.Loading = false
		})
		return
	}

	c.logger.Info("chat response received", "bytes", len(e.audio))
	c.play(ctx, e.audio)
	c.update(func(s *domain.State) {
		s.Response = domain.MessageResponsePlaying
		s.Loading = false
	})
}

func (c *Controller) play(ctx context.Context, audio []byte) {
	go func() {
		if err := c.player.Play(ctx, audio); err != nil {
			c.logger.Debug("playback failed", "error", err)
			if c.opts.ReportPlaybackErrors {
				c.post(playbackFailedEvent{err: err})
			}
		}
	}()
}

// errorText keeps a recognizer setup failure visible alongside msg.
func (c *Controller) errorText(msg string) string {
	switch {
	case c.mountErr == "":
		return msg
	case msg == "":
		return c.mountErr
	default:
		return c.mountErr + "\n" + msg
	}
}

func (c *Controller) update(fn func(s *domain.State)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn(&c.state)
	for ch := range c.subs {
		select {
		case ch <- c.state:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- c.state:
			default:
			}
		}
	}
}
