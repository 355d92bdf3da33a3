package domain_test

import (
	"testing"

	"voice-chat/internal/domain"
)

func TestRecognitionEvent_TopTranscript(t *testing.T) {
	tests := []struct {
		name   string
		event  domain.RecognitionEvent
		want   string
		wantOK bool
	}{
		{
			name: "first alternative of first result",
			event: domain.RecognitionEvent{
				Type: domain.RecognitionResult,
				Results: []domain.Utterance{
					{Alternatives: []domain.Alternative{{Transcript: "hello"}, {Transcript: "yellow"}}, Final: true},
					{Alternatives: []domain.Alternative{{Transcript: "later"}}},
				},
			},
			want:   "hello",
			wantOK: true,
		},
		{
			name:  "no results",
			event: domain.RecognitionEvent{Type: domain.RecognitionResult},
		},
		{
			name: "result without alternatives",
			event: domain.RecognitionEvent{
				Type:    domain.RecognitionResult,
				Results: []domain.Utterance{{Final: true}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.event.TopTranscript()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("got (%q, %t), want (%q, %t)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
