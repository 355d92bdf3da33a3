package application

import "context"

// ChatBackend sends one utterance to the chat endpoint and returns the spoken
// reply as encoded audio.
type ChatBackend interface {
	Send(ctx context.Context, text string) ([]byte, error)
}
