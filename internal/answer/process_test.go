package answer

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestProcessGenerator_EchoesStdin(t *testing.T) {
	requireShell(t)
	g, err := NewProcessGenerator([]string{"sh", "-c", "cat"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := g.Generate(context.Background(), "  héllo prompt\n")
	if err != nil {
		t.Fatal(err)
	}
	if got != "héllo prompt" {
		t.Errorf("Generate = %q, want trimmed stdin", got)
	}
}

func TestProcessGenerator_NonZeroExit(t *testing.T) {
	requireShell(t)
	g, _ := NewProcessGenerator([]string{"sh", "-c", "echo partial; echo 'model not found' >&2; exit 3"})
	_, err := g.Generate(context.Background(), "prompt")
	var ext *ExternalError
	if !errors.As(err, &ext) {
		t.Fatalf("err = %T %v, want *ExternalError", err, err)
	}
	if ext.ExitCode != 3 || ext.Stderr != "model not found" || !ext.Reported() {
		t.Errorf("ExternalError = %+v", ext)
	}
	if !errors.Is(err, ErrGeneration) {
		t.Error("error should wrap ErrGeneration")
	}
}

func TestProcessGenerator_SpawnFailure(t *testing.T) {
	g, _ := NewProcessGenerator([]string{"/nonexistent/ollama", "run", "llama3"})
	_, err := g.Generate(context.Background(), "prompt")
	var ext *ExternalError
	if !errors.As(err, &ext) {
		t.Fatalf("err = %T %v, want *ExternalError", err, err)
	}
	if ext.Reported() || ext.Err == nil {
		t.Errorf("spawn failure should carry the cause: %+v", ext)
	}
	if !strings.Contains(err.Error(), "/nonexistent/ollama") {
		t.Errorf("error should name the command: %v", err)
	}
}

func TestNewProcessGenerator_Empty(t *testing.T) {
	if _, err := NewProcessGenerator(nil); err == nil {
		t.Error("expected error for empty command")
	}
	if _, err := NewProcessGenerator([]string{""}); err == nil {
		t.Error("expected error for blank command")
	}
}

func TestProcessGenerator_argvIsCopied(t *testing.T) {
	argv := []string{"/bin/sh", "-c", "printf ok"}
	g, err := NewProcessGenerator(argv)
	if err != nil {
		t.Fatal(err)
	}
	argv[2] = "exit 3"
	out, err := g.Generate(context.Background(), "")
	if err != nil || out != "ok" {
		t.Errorf("Generate = %q, %v; generator aliased caller argv", out, err)
	}
}
