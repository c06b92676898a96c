package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperjump/sdkchat/internal/models"
)

type fakeGenerator struct {
	prompts []string
	out     string
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

type fakeRetriever struct {
	results []*models.RetrievalResult
	err     error
	gotK    int
	calls   int
}

func (f *fakeRetriever) Search(_ context.Context, _ string, k int) ([]*models.RetrievalResult, error) {
	f.calls++
	f.gotK = k
	return f.results, f.err
}

func retrieved(contents ...string) []*models.RetrievalResult {
	out := make([]*models.RetrievalResult, len(contents))
	for i, c := range contents {
		out[i] = &models.RetrievalResult{Document: &models.Document{Path: c + ".cs", Content: c}, Rank: i + 1, Position: i}
	}
	return out
}

func TestSynthesizer_Synthesize(t *testing.T) {
	gen := &fakeGenerator{out: "answer text"}
	s := NewSynthesizer(PromptBuilder{Preamble: "P", Instruction: "I"}, gen)
	got, err := s.Synthesize(context.Background(), "q", []string{"d1"})
	if err != nil || got != "answer text" {
		t.Fatalf("Synthesize = %q, %v", got, err)
	}
	if gen.prompts[0] != "P\n\n---\nd1\n\n---\nUser Question: q\nI\n" {
		t.Errorf("prompt = %q", gen.prompts[0])
	}
}

func TestSynthesizer_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"non-zero exit", &ExternalError{ExitCode: 1, Stderr: "model missing"}, "Error generating response: model missing"},
		{"spawn failure", &ExternalError{ExitCode: -1, Err: errors.New("exec: not found")}, "Error while trying to generate response: exec: not found"},
		{"other error", errors.New("boom"), "Error while trying to generate response: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSynthesizer(PromptBuilder{}, &fakeGenerator{err: tt.err})
			got, err := s.Synthesize(context.Background(), "q", nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if got != tt.want {
				t.Errorf("Synthesize = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestService_Answer(t *testing.T) {
	gen := &fakeGenerator{out: "Use the extension point."}
	ret := &fakeRetriever{results: retrieved("nearest", "second")}
	svc := NewService(ret, NewSynthesizer(PromptBuilder{Preamble: "P", Instruction: "I"}, gen), 5)

	got := svc.Answer(context.Background(), "How do I add a button?")
	if got != "Use the extension point." {
		t.Errorf("Answer = %q", got)
	}
	if ret.gotK != 5 {
		t.Errorf("k = %d, want 5", ret.gotK)
	}
	prompt := gen.prompts[0]
	if strings.Index(prompt, "nearest") > strings.Index(prompt, "second") {
		t.Error("documents must appear nearest first")
	}
	if !strings.Contains(prompt, "User Question: How do I add a button?") {
		t.Errorf("prompt missing question: %q", prompt)
	}
}

func TestService_Ask(t *testing.T) {
	ret := &fakeRetriever{results: retrieved("a", "b")}
	svc := NewService(ret, NewSynthesizer(PromptBuilder{}, &fakeGenerator{out: "ok"}), 2)
	a, err := svc.Ask(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if a.Answer != "ok" || a.Failed || len(a.Sources) != 2 || a.Question != "q" {
		t.Errorf("Answer = %+v", a)
	}
	if a.RequestID == "" {
		t.Error("request id should be set")
	}
	b, _ := svc.Ask(context.Background(), "q")
	if a.RequestID == b.RequestID {
		t.Error("request ids should be unique per call")
	}
}

func TestService_BlankQuestion(t *testing.T) {
	ret := &fakeRetriever{}
	gen := &fakeGenerator{}
	svc := NewService(ret, NewSynthesizer(PromptBuilder{}, gen), 5)
	for _, q := range []string{"", "   ", "\n\t"} {
		a, err := svc.Ask(context.Background(), q)
		if !errors.Is(err, ErrEmptyQuestion) {
			t.Errorf("Ask(%q) err = %v", q, err)
		}
		if a.Answer != EmptyQuestionMessage {
			t.Errorf("Ask(%q) = %q", q, a.Answer)
		}
	}
	if ret.calls != 0 || len(gen.prompts) != 0 {
		t.Error("blank questions must not reach retrieval or generation")
	}
}

func TestService_GenerationFailureIsText(t *testing.T) {
	gen := &fakeGenerator{err: &ExternalError{ExitCode: 1, Stderr: "pull model first"}}
	svc := NewService(&fakeRetriever{results: retrieved("a")}, NewSynthesizer(PromptBuilder{}, gen), 5)
	got := svc.Answer(context.Background(), "q")
	if got != "Error generating response: pull model first" {
		t.Errorf("Answer = %q", got)
	}
	a, err := svc.Ask(context.Background(), "q")
	if err == nil || !a.Failed || len(a.Sources) != 1 {
		t.Errorf("Ask = %+v, %v", a, err)
	}
}

func TestService_RetrievalFailureIsText(t *testing.T) {
	svc := NewService(&fakeRetriever{err: errors.New("dimension mismatch")}, NewSynthesizer(PromptBuilder{}, &fakeGenerator{}), 5)
	got := svc.Answer(context.Background(), "q")
	if !strings.HasPrefix(got, InvocationErrorPrefix) {
		t.Errorf("Answer = %q", got)
	}
}

func TestNewService_DefaultTopK(t *testing.T) {
	svc := NewService(&fakeRetriever{}, NewSynthesizer(PromptBuilder{}, &fakeGenerator{}), 0)
	if svc.TopK() != 5 {
		t.Errorf("TopK = %d, want 5", svc.TopK())
	}
}
