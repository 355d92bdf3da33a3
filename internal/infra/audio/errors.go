package audio

import "errors"

// ErrUnavailable is returned by devices compiled without audio support.
var ErrUnavailable = errors.New("audio device not available: rebuild with -tags portaudio")
