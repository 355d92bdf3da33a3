package domain

// State is the complete UI state of a voice chat session.
type State struct {
	Listening  bool   `json:"listening"`
	Transcript string `json:"transcript"`
	Response   string `json:"response"`
	Loading    bool   `json:"loading"`
	Error      string `json:"error"`
}

const (
	MessageUnsupported     = "Speech recognition is not supported on this system. Rebuild with -tags portaudio or use the file speech source."
	MessageResponsePlaying = "Response received and playing..."
	RecognitionErrorPrefix = "Speech recognition error: "
	BackendErrorPrefix     = "Error: "
	PlaybackErrorPrefix    = "Playback error: "
	DefaultRecognitionLang = "en-US"
)
