package application

import "context"

// Player plays encoded audio and returns once playback has finished.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// NoopPlayer discards audio. Used when playback is disabled.
type NoopPlayer struct{}

func (n *NoopPlayer) Play(_ context.Context, _ []byte) error {
	return nil
}
