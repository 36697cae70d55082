package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/entrhq/trainer/pkg/identity"
	"github.com/entrhq/trainer/pkg/llm/openai"
	"github.com/entrhq/trainer/pkg/logging"
	"github.com/entrhq/trainer/pkg/store"
)

// Environment variables consulted by the builders, in precedence order where
// several apply to one setting.
var (
	apiKeyEnv  = []string{"TRAINER_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY"}
	baseURLEnv = []string{"OPENAI_BASE_URL"}
	dataDirEnv = []string{"TRAINER_DATA_DIR"}
)

func firstEnv(names []string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// BuildProvider creates an LLM provider based on configuration precedence:
// CLI flags > Environment variables > Config file > Defaults
func BuildProvider(cliModel, cliBaseURL, cliAPIKey string) (*openai.Provider, error) {
	var fileModel, fileBaseURL, fileAPIKey string
	var maxTokens int
	if llmConfigFromFile := GetLLM(); llmConfigFromFile != nil {
		fileModel = llmConfigFromFile.GetModel()
		fileBaseURL = llmConfigFromFile.GetBaseURL()
		fileAPIKey = llmConfigFromFile.GetAPIKey()
		maxTokens = llmConfigFromFile.GetMaxTokens()
	}

	finalModel := firstNonEmpty(cliModel, fileModel, DefaultModel)
	finalBaseURL := firstNonEmpty(cliBaseURL, firstEnv(baseURLEnv), fileBaseURL, DefaultBaseURL)
	finalAPIKey := firstNonEmpty(cliAPIKey, firstEnv(apiKeyEnv), fileAPIKey)

	if finalAPIKey == "" {
		return nil, fmt.Errorf("API key is required. Set GEMINI_API_KEY or OPENAI_API_KEY, use -api-key flag, or configure api_key in the llm section of ~/.trainer/config.json")
	}

	provider, err := openai.NewProvider(finalAPIKey,
		openai.WithModel(finalModel),
		openai.WithBaseURL(finalBaseURL),
		openai.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	return provider, nil
}

// RequestTimeout resolves the generation timeout: a positive flag value wins,
// then the config file, then DefaultRequestTimeout.
func RequestTimeout(cliTimeout time.Duration) time.Duration {
	if cliTimeout > 0 {
		return cliTimeout
	}
	if s := GetLLM(); s != nil {
		return s.GetRequestTimeout()
	}
	return DefaultRequestTimeout
}

// SystemPrompt returns the configured system prompt, if any.
func SystemPrompt() string {
	if s := GetLLM(); s != nil {
		return s.GetSystemPrompt()
	}
	return ""
}

// DataDir resolves the directory holding file and SQLite histories:
// flag > TRAINER_DATA_DIR > config file > ~/.trainer/data.
func DataDir(cliDataDir string) (string, error) {
	var fileDir string
	if s := GetStorage(); s != nil {
		fileDir = s.Settings().Dir
	}
	if dir := firstNonEmpty(cliDataDir, firstEnv(dataDirEnv), fileDir); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".trainer", "data"), nil
}

// BuildLog opens the configured plan history backend.
func BuildLog(ctx context.Context, cliDataDir string, logger *logging.Logger) (store.Store, error) {
	settings := store.Settings{Backend: store.BackendFile}
	strict := false
	if s := GetStorage(); s != nil {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		settings = s.Settings()
		strict = s.IsStrict()
	}

	dir, err := DataDir(cliDataDir)
	if err != nil {
		return nil, err
	}
	settings.Dir = dir

	log, err := store.Open(ctx, settings, store.WithLogger(logger), store.WithStrict(strict))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", settings.Backend, err)
	}
	return log, nil
}

// BuildResolver builds the login resolver from the identity section. Tokens
// are accepted only when a jwt_secret is configured.
func BuildResolver() (identity.Resolver, error) {
	s := GetIdentity()
	if s == nil {
		s = NewIdentitySection()
	}

	table, err := identity.NewTableResolver(s.GetUsers())
	if err != nil {
		return nil, err
	}
	if secret := s.GetJWTSecret(); secret != "" {
		return identity.Chain(table, identity.NewTokenResolver([]byte(secret))), nil
	}
	return table, nil
}
