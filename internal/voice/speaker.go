package voice

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandSpeaker runs an external TTS command (espeak, say, piper) with the
// utterance appended as the final argument.
type CommandSpeaker struct {
	command string
	args    []string
}

// NewCommandSpeaker parses a command line such as "espeak -v en" into a
// Speaker.
func NewCommandSpeaker(commandLine string) (*CommandSpeaker, error) {
	parts := strings.Fields(commandLine)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty speech command")
	}
	return &CommandSpeaker{command: parts[0], args: parts[1:]}, nil
}

func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	args := append(append([]string{}, s.args...), text)
	cmd := exec.CommandContext(ctx, s.command, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", s.command, err, strings.TrimSpace(string(out)))
	}
	return nil
}
