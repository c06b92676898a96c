package answer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ProcessGenerator runs an external command per prompt, writing the prompt
// to its stdin and reading the answer from stdout.
type ProcessGenerator struct {
	argv []string
}

// NewProcessGenerator creates a generator for argv, e.g. ["ollama", "run", "llama3"].
func NewProcessGenerator(argv []string) (*ProcessGenerator, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("generator command is empty")
	}
	return &ProcessGenerator{argv: append([]string(nil), argv...)}, nil
}

// Generate runs the command to completion. A non-zero exit yields an
// *ExternalError carrying the exit code and trimmed stderr; a failure to
// start yields an *ExternalError wrapping the cause.
func (g *ProcessGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, g.argv[0], g.argv[1:]...)
	cmd.Stdin = strings.NewReader(prompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			return "", &ExternalError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(strings.ToValidUTF8(stderr.String(), "\uFFFD")),
			}
		}
		return "", &ExternalError{ExitCode: -1, Err: fmt.Errorf("run %s: %w", g.argv[0], err)}
	}
	return strings.TrimSpace(strings.ToValidUTF8(stdout.String(), "\uFFFD")), nil
}
