package answer

import (
	"context"
	"errors"
)

// Prefixes marking an answer string as an error report.
const (
	GenerationErrorPrefix = "Error generating response: "
	InvocationErrorPrefix = "Error while trying to generate response: "
)

// Synthesizer builds the prompt and calls the generator.
type Synthesizer struct {
	prompt    PromptBuilder
	generator Generator
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(prompt PromptBuilder, generator Generator) *Synthesizer {
	return &Synthesizer{prompt: prompt, generator: generator}
}

// Synthesize returns the generated answer for question given the retrieved
// document contents, nearest first. On failure the returned string is an
// error-prefixed message fit for display and err holds the cause.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, retrieved []string) (string, error) {
	out, err := s.generator.Generate(ctx, s.prompt.Build(question, retrieved))
	if err != nil {
		return ErrorMessage(err), err
	}
	return out, nil
}

// ErrorMessage renders err as a user-facing answer string. Failures the
// backend reported carry its stderr; anything else is an invocation error.
func ErrorMessage(err error) string {
	var ext *ExternalError
	if errors.As(err, &ext) && ext.Reported() {
		return GenerationErrorPrefix + ext.Stderr
	}
	return InvocationErrorPrefix + err.Error()
}
