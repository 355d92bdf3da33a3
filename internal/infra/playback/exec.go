// Package playback plays chat responses through an external player command.
package playback

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"
)

// ExecPlayer writes each response to a temporary file and runs the player
// command with the file path appended. The file is removed once the command
// exits.
type ExecPlayer struct {
	cmd    []string
	logger *slog.Logger
}

func NewExecPlayer(command string, logger *slog.Logger) (*ExecPlayer, error) {
	args, err := shellwords.NewParser().Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse player command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("player command is empty")
	}
	return &ExecPlayer{cmd: args, logger: logger}, nil
}

func (p *ExecPlayer) Play(ctx context.Context, audio []byte) error {
	if len(audio) == 0 {
		return fmt.Errorf("empty audio response")
	}

	file, err := os.CreateTemp("", "voicechat_response_*"+extension(audio))
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(file.Name())

	if _, err := file.Write(audio); err != nil {
		file.Close()
		return fmt.Errorf("writing audio: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing audio file: %w", err)
	}

	args := append([]string{}, p.cmd[1:]...)
	args = append(args, file.Name())

	command := exec.CommandContext(ctx, p.cmd[0], args...)
	var stderr bytes.Buffer
	command.Stderr = &stderr

	p.logger.Debug("playing response", "player", p.cmd[0], "bytes", len(audio))
	if err := command.Run(); err != nil {
		return fmt.Errorf("player command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// extension guesses a file suffix from the leading bytes so players that
// dispatch on extension pick the right decoder.
func extension(audio []byte) string {
	switch {
	case bytes.HasPrefix(audio, []byte("RIFF")):
		return ".wav"
	case bytes.HasPrefix(audio, []byte("ID3")), len(audio) > 1 && audio[0] == 0xFF && audio[1]&0xE0 == 0xE0:
		return ".mp3"
	case bytes.HasPrefix(audio, []byte("OggS")):
		return ".ogg"
	case bytes.HasPrefix(audio, []byte("fLaC")):
		return ".flac"
	default:
		return ".audio"
	}
}
