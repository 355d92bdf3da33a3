package domain

// RecognitionEventType identifies a recognizer callback.
type RecognitionEventType string

const (
	RecognitionStart  RecognitionEventType = "start"
	RecognitionResult RecognitionEventType = "result"
	RecognitionError  RecognitionEventType = "error"
	RecognitionEnd    RecognitionEventType = "end"
)

// RecognitionErrorCode is the reason reported with a RecognitionError event.
type RecognitionErrorCode string

const (
	ErrorNoSpeech     RecognitionErrorCode = "no-speech"
	ErrorAudioCapture RecognitionErrorCode = "audio-capture"
	ErrorNetwork      RecognitionErrorCode = "network"
	ErrorAborted      RecognitionErrorCode = "aborted"
)

// Alternative is one candidate transcription of an utterance.
type Alternative struct {
	Transcript string
	Confidence float64
}

// Utterance holds the alternatives for one recognized utterance, best first.
type Utterance struct {
	Alternatives []Alternative
	Final        bool
}

// RecognitionEvent is delivered by a recognizer session to its handler.
type RecognitionEvent struct {
	Type      RecognitionEventType
	SessionID string
	Results   []Utterance
	Code      RecognitionErrorCode
	Message   string
}

// TopTranscript returns the first alternative of the first result.
func (e RecognitionEvent) TopTranscript() (string, bool) {
	if len(e.Results) == 0 || len(e.Results[0].Alternatives) == 0 {
		return "", false
	}
	return e.Results[0].Alternatives[0].Transcript, true
}
