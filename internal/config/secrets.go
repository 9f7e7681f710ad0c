package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"
)

// KeyringService is the OS keyring service all secrets are stored under.
const KeyringService = "reqsmith"

// Secret names. Each is also the environment variable consulted as a fallback.
const (
	SecretOpenAIAPIKey   = "OPENAI_API_KEY"
	SecretJiraServer     = "JIRA_SERVER"
	SecretJiraEmail      = "JIRA_EMAIL"
	SecretJiraAPIToken   = "JIRA_API_TOKEN"
	SecretJiraProjectKey = "JIRA_PROJECT_KEY"
)

var secretNames = []string{
	SecretOpenAIAPIKey,
	SecretJiraServer,
	SecretJiraEmail,
	SecretJiraAPIToken,
	SecretJiraProjectKey,
}

// SecretNames lists the supported secrets in display order.
func SecretNames() []string {
	return slices.Clone(secretNames)
}

// IsKnownSecret reports whether name is a supported secret.
func IsKnownSecret(name string) bool {
	return slices.Contains(secretNames, name)
}

// GetSecret resolves a secret from the OS keyring (service "reqsmith", user = name),
// falling back to the environment variable of the same name.
func GetSecret(name string) (string, error) {
	if !IsKnownSecret(name) {
		return "", fmt.Errorf("%w: %s", ErrUnknownSecret, name)
	}

	log.Debug().Str("service", KeyringService).Str("user", name).Msg("Attempting to get secret from keychain")
	value, err := keyring.Get(KeyringService, name)
	if err == nil && value != "" {
		log.Debug().Str("secret", name).Msg("Secret retrieved (from keychain)")
		return value, nil
	}
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		// An unavailable keyring (headless CI, containers) must not hide the env fallback.
		log.Warn().Err(err).Str("service", KeyringService).Str("user", name).Msg("Error reading keychain, checking environment")
	}

	if value := os.Getenv(name); value != "" {
		log.Debug().Str("secret", name).Msg("Secret retrieved (from env var)")
		return value, nil
	}

	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: %s: %w", ErrKeyringGet, name, err)
	}
	return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
}

// SetSecret stores a secret in the OS keyring.
func SetSecret(name, value string) error {
	if !IsKnownSecret(name) {
		return fmt.Errorf("%w: %s", ErrUnknownSecret, name)
	}
	log.Debug().Str("service", KeyringService).Str("user", name).Msg("Attempting to set secret in keychain")
	if err := keyring.Set(KeyringService, name, value); err != nil {
		log.Error().Err(err).Str("service", KeyringService).Str("user", name).Msg("Failed to set secret in keychain")
		return fmt.Errorf("%w: %w", ErrKeyringSet, err)
	}
	log.Info().Str("service", KeyringService).Str("user", name).Msg("Secret stored successfully in keychain")
	return nil
}

// LoadDotEnv loads the given dotenv files that exist, in order. Variables
// already present in the environment are never overridden, so earlier files
// win over later ones.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to load .env file")
			return fmt.Errorf("%w: %s: %w", ErrDotEnvLoad, path, err)
		}
		log.Debug().Str("path", path).Msg("Loaded .env file")
	}
	return nil
}
