package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AWSConfig holds the AWS region. Credentials come from the default chain.
type AWSConfig struct {
	Region string `yaml:"region"`
}

// ChatConfig configures the chat model and the turn loop.
type ChatConfig struct {
	ModelID           string   `yaml:"model_id"`
	MaxTokens         int32    `yaml:"max_tokens"`
	Temperature       float32  `yaml:"temperature"`
	TopP              float32  `yaml:"top_p"`
	StopSequences     []string `yaml:"stop_sequences"`
	MaxMessages       int      `yaml:"max_messages"`
	UnknownToolPolicy string   `yaml:"unknown_tool_policy"`
	ToolMarker        bool     `yaml:"tool_marker"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// BedrockEmbedderConfig configures the Titan embedder.
type BedrockEmbedderConfig struct {
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	Normalize bool   `yaml:"normalize"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type    string                 `yaml:"type"`
	Bedrock *BedrockEmbedderConfig `yaml:"bedrock,omitempty"`
	OpenAI  *OpenAIEmbedderConfig  `yaml:"openai,omitempty"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type       string `yaml:"type"`
	Path       string `yaml:"path"`
	Compress   bool   `yaml:"compress"`
	Collection string `yaml:"collection"`
	TopK       int    `yaml:"top_k"`
}

// PopulateConfig points at the collection source files.
type PopulateConfig struct {
	CollectionsPath string `yaml:"collections_path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	AWS         AWSConfig         `yaml:"aws"`
	Chat        ChatConfig        `yaml:"chat"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Populate    PopulateConfig    `yaml:"populate"`
	Log         LogConfig         `yaml:"log"`
}

const (
	DefaultRegion          = "eu-central-1"
	DefaultModelID         = "anthropic.claude-3-sonnet-20240229-v1:0"
	DefaultMaxTokens       = 2000
	DefaultTopP            = 0.9
	DefaultMaxMessages     = 20
	DefaultEmbeddingModel  = "amazon.titan-embed-text-v2:0"
	DefaultEmbeddingDim    = 1024
	DefaultChromaPath      = "data/chroma"
	DefaultCollectionsPath = "data/collections"
	DefaultCollection      = "bedrock_faqs_collection"
	DefaultTopK            = 4
	DefaultLogFile         = "ragchat.log"
)

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/ragchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/ragchat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnv(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragchat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		AWS: AWSConfig{Region: DefaultRegion},
		Chat: ChatConfig{
			ModelID:           DefaultModelID,
			MaxTokens:         DefaultMaxTokens,
			Temperature:       0,
			TopP:              DefaultTopP,
			StopSequences:     []string{},
			MaxMessages:       DefaultMaxMessages,
			UnknownToolPolicy: "ignore",
			ToolMarker:        true,
		},
		Embedder: EmbedderConfig{
			Type:    "bedrock",
			Bedrock: &BedrockEmbedderConfig{Model: DefaultEmbeddingModel, Dimension: DefaultEmbeddingDim, Normalize: true},
		},
		VectorStore: VectorStoreConfig{
			Type:       "chromem",
			Path:       DefaultChromaPath,
			Collection: DefaultCollection,
			TopK:       DefaultTopK,
		},
		Populate: PopulateConfig{CollectionsPath: DefaultCollectionsPath},
		Log:      LogConfig{Level: "info", File: DefaultLogFile},
	}
}

// applyConfigDefaults fills fields a partial file left at zero values.
func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chat.MaxTokens == 0 {
		cfg.Chat.MaxTokens = DefaultMaxTokens
	}
	if cfg.Chat.MaxMessages == 0 {
		cfg.Chat.MaxMessages = DefaultMaxMessages
	}
	if cfg.VectorStore.TopK == 0 {
		cfg.VectorStore.TopK = DefaultTopK
	}
	if cfg.Embedder.Type == "bedrock" || cfg.Embedder.Type == "" {
		if cfg.Embedder.Bedrock == nil {
			cfg.Embedder.Bedrock = &BedrockEmbedderConfig{Normalize: true}
		}
		if cfg.Embedder.Bedrock.Model == "" {
			cfg.Embedder.Bedrock.Model = DefaultEmbeddingModel
		}
		if cfg.Embedder.Bedrock.Dimension == 0 {
			cfg.Embedder.Bedrock.Dimension = DefaultEmbeddingDim
		}
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("AWS_DEFAULT_REGION"); v != "" {
		cfg.AWS.Region = v
	}
	if v := os.Getenv("CHROMA_DB_PATH"); v != "" {
		cfg.VectorStore.Path = v
	}
	if v := os.Getenv("COLLECTIONS_PATH"); v != "" {
		cfg.Populate.CollectionsPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
