package audio

import "time"

// CaptureConfig controls how one utterance is cut from the input stream.
type CaptureConfig struct {
	SampleRate int
	// SilenceThreshold is the peak amplitude under which a frame counts as
	// silence.
	SilenceThreshold int16
	// SilenceDuration of trailing silence ends an utterance.
	SilenceDuration time.Duration
	// MaxDuration bounds a single recording.
	MaxDuration time.Duration
}

func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		SampleRate:       16000,
		SilenceThreshold: 500,
		SilenceDuration:  time.Second,
		MaxDuration:      10 * time.Second,
	}
}

// Endpointer decides when a mono recording holds a complete utterance:
// speech followed by enough silence, or the maximum length.
type Endpointer struct {
	threshold    int16
	silenceLimit int
	maxSamples   int

	total   int
	silence int
	speech  bool
}

func NewEndpointer(cfg CaptureConfig) *Endpointer {
	return &Endpointer{
		threshold:    cfg.SilenceThreshold,
		silenceLimit: int(cfg.SilenceDuration.Seconds() * float64(cfg.SampleRate)),
		maxSamples:   int(cfg.MaxDuration.Seconds() * float64(cfg.SampleRate)),
	}
}

// Push feeds one frame and reports whether recording should stop.
func (e *Endpointer) Push(frame []int16) bool {
	e.total += len(frame)

	silent := true
	for _, s := range frame {
		if s > e.threshold || s < -e.threshold {
			silent = false
			break
		}
	}

	if silent {
		e.silence += len(frame)
	} else {
		e.silence = 0
		e.speech = true
	}

	if e.speech && e.silence >= e.silenceLimit {
		return true
	}
	return e.maxSamples > 0 && e.total >= e.maxSamples
}

// HeardSpeech reports whether any frame crossed the threshold.
func (e *Endpointer) HeardSpeech() bool {
	return e.speech
}
