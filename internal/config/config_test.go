package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
retrieval:
  top_k: 3
index:
  type: faiss
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("top_k = %d, want 3", cfg.Retrieval.TopK)
	}
	if cfg.Index.Type != "faiss" {
		t.Errorf("index type = %q, want faiss", cfg.Index.Type)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_invalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("corpus: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
corpus:
  directories: ["./sdk/instore", "/abs/scaleunit"]
embedding:
  model_path: "./models/model.onnx"
  vocab_path: "./models/vocab.txt"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantModel := filepath.Join(dir, "models", "model.onnx")
	if cfg.Embedding.ModelPath != wantModel {
		t.Errorf("model_path = %s, want %s", cfg.Embedding.ModelPath, wantModel)
	}
	wantVocab := filepath.Join(dir, "models", "vocab.txt")
	if cfg.Embedding.VocabPath != wantVocab {
		t.Errorf("vocab_path = %s, want %s", cfg.Embedding.VocabPath, wantVocab)
	}
	if len(cfg.Corpus.Directories) != 2 {
		t.Fatalf("corpus directories: got %d", len(cfg.Corpus.Directories))
	}
	if want := filepath.Join(dir, "sdk", "instore"); cfg.Corpus.Directories[0] != want {
		t.Errorf("corpus directory = %s, want %s", cfg.Corpus.Directories[0], want)
	}
	if cfg.Corpus.Directories[1] != "/abs/scaleunit" {
		t.Errorf("absolute corpus directory changed: %s", cfg.Corpus.Directories[1])
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("default top_k: got %d, want 5", cfg.Retrieval.TopK)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default dimensions: got %d, want 384", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.Pooling != "mean" || cfg.Embedding.OutputName != "last_hidden_state" {
		t.Errorf("default pooling/output: got %s/%s", cfg.Embedding.Pooling, cfg.Embedding.OutputName)
	}
	if cfg.Index.Type != "flat" {
		t.Errorf("default index type: got %s", cfg.Index.Type)
	}
	if got := cfg.Generator.Command; len(got) != 3 || got[0] != "ollama" || got[1] != "run" || got[2] != "llama3" {
		t.Errorf("default generator command: got %v", got)
	}
	if len(cfg.Corpus.Directories) != 2 {
		t.Errorf("default corpus directories: got %v", cfg.Corpus.Directories)
	}
	if cfg.Prompt.Preamble != DefaultPreamble || cfg.Prompt.Instruction != DefaultInstruction {
		t.Error("prompt defaults not applied")
	}
}

func TestApplyDefaults_poolingNoneUsesSentenceEmbedding(t *testing.T) {
	cfg := &Config{Embedding: EmbeddingConfig{Pooling: "none"}}
	ApplyDefaults(cfg)
	if cfg.Embedding.OutputName != "sentence_embedding" {
		t.Errorf("output name = %s, want sentence_embedding", cfg.Embedding.OutputName)
	}
}

func TestEmbeddingConfig_LowercaseOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		e := &EmbeddingConfig{}
		if got := e.LowercaseOrDefault(); !got {
			t.Errorf("LowercaseOrDefault() = %v, want true", got)
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		e := &EmbeddingConfig{Lowercase: &f}
		if got := e.LowercaseOrDefault(); got {
			t.Errorf("LowercaseOrDefault() = %v, want false", got)
		}
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	for _, d := range cfg.Corpus.Directories {
		if !filepath.IsAbs(d) {
			t.Errorf("corpus directory not absolute: %s", d)
		}
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:    ServerConfig{Host: "localhost", Port: 9090},
		Retrieval: RetrievalConfig{TopK: 7},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
	if loaded.Retrieval.TopK != 7 {
		t.Errorf("loaded top_k: got %d", loaded.Retrieval.TopK)
	}
}
