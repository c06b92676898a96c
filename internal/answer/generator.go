// Package answer turns a question and its retrieved documents into a generated answer.
package answer

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/sdkchat/internal/config"
)

// Generator produces text for a prompt. Implementations block until the
// backend responds; they do not retry or impose a timeout.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrGeneration is wrapped by every error a Generator returns.
var ErrGeneration = errors.New("generation failed")

// ExternalError describes a failed call to the language model backend.
// Err is set when the backend could not be reached or started at all;
// otherwise ExitCode and Stderr describe the failure it reported.
type ExternalError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExternalError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d: %s", e.ExitCode, e.Stderr)
}

func (e *ExternalError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrGeneration, e.Err}
	}
	return []error{ErrGeneration}
}

// Reported reports whether the backend ran and reported a failure, as
// opposed to never being reached.
func (e *ExternalError) Reported() bool {
	return e.Err == nil
}

// Generator types accepted by NewGenerator.
const (
	GeneratorProcess = "process"
	GeneratorOpenAI  = "openai"
)

// NewGenerator creates the generator selected by cfg.Type.
func NewGenerator(cfg config.GeneratorConfig) (Generator, error) {
	switch cfg.Type {
	case GeneratorProcess:
		g, err := NewProcessGenerator(cfg.Command)
		if err != nil {
			return nil, err
		}
		return g, nil
	case GeneratorOpenAI:
		g, err := NewOpenAIGenerator(cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown generator type %q (want %q or %q)", cfg.Type, GeneratorProcess, GeneratorOpenAI)
	}
}
