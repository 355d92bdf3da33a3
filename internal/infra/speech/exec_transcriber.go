package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-shellwords"
)

// ExecTranscriber runs a local command once per utterance. The command gets
// --audio <file> --language <code> appended and must print
// {"text": "..."} on stdout.
type ExecTranscriber struct {
	cmd []string
}

type execResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

func NewExecTranscriber(command string) (*ExecTranscriber, error) {
	args, err := shellwords.NewParser().Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse transcriber command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("transcriber command is empty")
	}
	return &ExecTranscriber{cmd: args}, nil
}

func (e *ExecTranscriber) Name() string {
	return "exec:" + e.cmd[0]
}

func (e *ExecTranscriber) Transcribe(ctx context.Context, audio []byte, language string) (string, error) {
	file, err := os.CreateTemp("", "voicechat_stt_*.wav")
	if err != nil {
		return "", fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(file.Name())

	if _, err := file.Write(audio); err != nil {
		file.Close()
		return "", fmt.Errorf("writing audio: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing audio file: %w", err)
	}

	args := append([]string{}, e.cmd[1:]...)
	args = append(args, "--audio", file.Name())
	if language != "" {
		args = append(args, "--language", primaryLanguage(language))
	}

	command := exec.CommandContext(ctx, e.cmd[0], args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("transcriber command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var res execResult
	if err := json.Unmarshal(stdout.Bytes(), &res); err != nil {
		return "", fmt.Errorf("decode transcriber output: %w", err)
	}
	return strings.TrimSpace(res.Text), nil
}

func primaryLanguage(tag string) string {
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
