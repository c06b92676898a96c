package config

import "os"

// DefaultPreamble and DefaultInstruction frame the retrieved documents in the prompt.
const (
	DefaultPreamble = "You are an assistant for Microsoft Dynamics 365 SDK. Provide detailed, step-by-step C# code examples " +
		"for the following question based on the provided content. The answer must include complete C# code to add a custom button in the POS."
	DefaultInstruction = "Answer with step-by-step C# code examples:"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if len(cfg.Corpus.Directories) == 0 {
		cfg.Corpus.Directories = []string{
			"./Dynamics365Commerce.InStore-release-9.52",
			"./Dynamics365Commerce.ScaleUnit-release-9.52",
		}
	}
	if cfg.Corpus.ArchiveExt == "" {
		cfg.Corpus.ArchiveExt = ".zip"
	}
	if cfg.Embedding.Type == "" {
		cfg.Embedding.Type = "onnx"
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/sdkchat/models/all-MiniLM-L6-v2.onnx"
	}
	if cfg.Embedding.VocabPath == "" {
		cfg.Embedding.VocabPath = "/usr/local/var/sdkchat/models/vocab.txt"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.Pooling == "" {
		cfg.Embedding.Pooling = "mean"
	}
	if cfg.Embedding.OutputName == "" {
		if cfg.Embedding.Pooling == "mean" {
			cfg.Embedding.OutputName = "last_hidden_state"
		} else {
			cfg.Embedding.OutputName = "sentence_embedding"
		}
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "flat"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "process"
	}
	if len(cfg.Generator.Command) == 0 {
		cfg.Generator.Command = []string{"ollama", "run", "llama3"}
	}
	if cfg.Generator.OpenAI.BaseURL == "" {
		cfg.Generator.OpenAI.BaseURL = "http://localhost:11434/v1"
	}
	if cfg.Generator.OpenAI.APIKeyEnv == "" {
		cfg.Generator.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Generator.OpenAI.Model == "" {
		cfg.Generator.OpenAI.Model = "llama3"
	}
	if cfg.Prompt.Preamble == "" {
		cfg.Prompt.Preamble = DefaultPreamble
	}
	if cfg.Prompt.Instruction == "" {
		cfg.Prompt.Instruction = DefaultInstruction
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500
	}
}

// Default returns a config with every default applied, for runs without a config file.
// Relative paths resolve against the working directory.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if wd, err := os.Getwd(); err == nil {
		cfg.ExpandPaths(wd)
	}
	return cfg
}
