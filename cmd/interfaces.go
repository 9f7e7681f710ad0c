package cmd

import (
	"github.com/karolswdev/reqsmith/internal/config"
)

// ConfigProvider loads configuration and manages the configuration directory.
// This abstraction allows tests to replace file and environment access.
type ConfigProvider interface {
	LoadConfig() (*config.AppConfig, error)
	CreateDefaultConfigFiles() error
	EnsureConfigDir() (string, error)
}

// KeyringClient reads and stores named secrets (OPENAI_API_KEY, JIRA_*). Reads
// fall back to the environment; writes go to the OS keyring.
type KeyringClient interface {
	SetSecret(name, value string) error
	GetSecret(name string) (string, error)
}
