package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigFileName is the standard name for the main configuration file.
	DefaultConfigFileName = "config.yaml"
	// DefaultEnvFileName is the dotenv file read for secrets.
	DefaultEnvFileName = ".env"
	// DefaultEnvExampleFileName is the template written by CreateDefaultConfigFiles.
	DefaultEnvExampleFileName = ".env.example"
	// DefaultConfigDirName is the standard name for the configuration directory within the user's home directory.
	DefaultConfigDirName = ".reqsmith"
	// ConfigDirEnvVar is the environment variable used to override the default configuration directory path.
	ConfigDirEnvVar = "REQSMITH_CONFIG_DIR"
	// EnvPrefix prefixes environment overrides of config keys (llm.timeout -> REQSMITH_LLM_TIMEOUT).
	EnvPrefix = "REQSMITH"
)

// Supported values for enumerated settings.
const (
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// EnsureConfigDir checks if the configuration directory exists, creating it if necessary.
// It prioritizes baseDir if provided, then REQSMITH_CONFIG_DIR, then ~/.reqsmith.
// It returns the validated configuration directory path.
func EnsureConfigDir(baseDir string) (string, error) {
	configDirPath, err := resolveConfigDir(baseDir)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(configDirPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", configDirPath).Msg("Config directory does not exist, attempting to create")
			if mkdirErr := os.MkdirAll(configDirPath, 0700); mkdirErr != nil {
				log.Error().Err(mkdirErr).Str("path", configDirPath).Msg("Failed to create config directory")
				return "", fmt.Errorf("%w: %w", ErrConfigDirCreate, mkdirErr)
			}
			log.Info().Str("path", configDirPath).Msg("Successfully created config directory")
			return configDirPath, nil
		}
		log.Error().Err(err).Str("path", configDirPath).Msg("Failed to stat config directory path")
		return "", fmt.Errorf("%w: %w", ErrConfigDirStat, err)
	}

	if !info.IsDir() {
		log.Error().Str("path", configDirPath).Msg("Config path exists but is not a directory")
		return "", ErrConfigDirNotDir
	}

	log.Debug().Str("path", configDirPath).Msg("Config directory exists and is a directory")
	return configDirPath, nil
}

func resolveConfigDir(baseDir string) (string, error) {
	if baseDir != "" {
		log.Debug().Str("path", baseDir).Msg("Using provided base directory path")
		return baseDir, nil
	}
	if envDir := os.Getenv(ConfigDirEnvVar); envDir != "" {
		log.Debug().Str("path", envDir).Str("env_var", ConfigDirEnvVar).Msg("Using config directory path from environment variable")
		return envDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultConfigDirName), nil
}

// OpenAIConfig holds configuration specific to the OpenAI provider.
type OpenAIConfig struct {
	ModelName string `mapstructure:"model_name" yaml:"model_name" json:"model_name"`
	BaseURL   string `mapstructure:"base_url" yaml:"base_url,omitempty" json:"base_url,omitempty"`
}

// LLMConfig selects the completion provider. The API key is a secret, see GetSecret.
type LLMConfig struct {
	Provider string        `mapstructure:"provider" yaml:"provider" json:"provider"`
	OpenAI   OpenAIConfig  `mapstructure:"openai" yaml:"openai" json:"openai"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// TrackerConfig controls ticket filing. Server, credentials and project key are secrets.
type TrackerConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	IssueType string        `mapstructure:"issue_type" yaml:"issue_type" json:"issue_type"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
}

// ExportConfig controls the rendered PDF.
type ExportConfig struct {
	Filename        string  `mapstructure:"filename" yaml:"filename" json:"filename"`
	FontFamily      string  `mapstructure:"font_family" yaml:"font_family" json:"font_family"`
	FontSize        float64 `mapstructure:"font_size" yaml:"font_size" json:"font_size"`
	LineHeight      float64 `mapstructure:"line_height" yaml:"line_height" json:"line_height"`
	PageBreakMargin float64 `mapstructure:"page_break_margin" yaml:"page_break_margin" json:"page_break_margin"`
	Charset         string  `mapstructure:"charset" yaml:"charset" json:"charset"`
	Substitute      string  `mapstructure:"substitute" yaml:"substitute" json:"substitute"`
}

// ServerConfig controls `reqsmith serve`.
type ServerConfig struct {
	Addr              string   `mapstructure:"addr" yaml:"addr" json:"addr"`
	AllowedOrigins    []string `mapstructure:"allowed_origins" yaml:"allowed_origins" json:"allowed_origins"`
	GeneratePerMinute int      `mapstructure:"generate_per_minute" yaml:"generate_per_minute" json:"generate_per_minute"`
}

// SessionConfig selects where generated documents are kept.
type SessionConfig struct {
	Backend   string        `mapstructure:"backend" yaml:"backend" json:"backend"`
	RedisAddr string        `mapstructure:"redis_addr" yaml:"redis_addr" json:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db" yaml:"redis_db" json:"redis_db"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl" json:"ttl"`
}

// AppConfig holds the overall application configuration.
type AppConfig struct {
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm" json:"llm"`
	Tracker TrackerConfig `mapstructure:"tracker" yaml:"tracker" json:"tracker"`
	Export  ExportConfig  `mapstructure:"export" yaml:"export" json:"export"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server" json:"server"`
	Session SessionConfig `mapstructure:"session" yaml:"session" json:"session"`
}

// Validate checks the enumerated settings.
func (c *AppConfig) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderMock:
	default:
		return fmt.Errorf("%w: llm.provider %q (want %s or %s)", ErrConfigInvalid, c.LLM.Provider, ProviderOpenAI, ProviderMock)
	}
	switch c.Session.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("%w: session.backend %q (want %s or %s)", ErrConfigInvalid, c.Session.Backend, BackendMemory, BackendRedis)
	}
	if c.Session.Backend == BackendRedis && c.Session.RedisAddr == "" {
		return fmt.Errorf("%w: session.redis_addr is required for the redis backend", ErrConfigInvalid)
	}
	if c.LLM.Timeout < 0 || c.Tracker.Timeout < 0 || c.Session.TTL < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrConfigInvalid)
	}
	if c.Server.GeneratePerMinute < 0 {
		return fmt.Errorf("%w: server.generate_per_minute must not be negative", ErrConfigInvalid)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.openai.model_name", "gpt-4o-mini")
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.timeout", "0s")

	v.SetDefault("tracker.enabled", true)
	v.SetDefault("tracker.issue_type", "Task")
	v.SetDefault("tracker.timeout", "0s")

	v.SetDefault("export.filename", "requirements.pdf")
	v.SetDefault("export.font_family", "Arial")
	v.SetDefault("export.font_size", 12)
	v.SetDefault("export.line_height", 10)
	v.SetDefault("export.page_break_margin", 15)
	v.SetDefault("export.charset", "iso-8859-1")
	v.SetDefault("export.substitute", "?")

	v.SetDefault("server.addr", "127.0.0.1:8501")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.generate_per_minute", 0)

	v.SetDefault("session.backend", BackendMemory)
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_db", 0)
	v.SetDefault("session.ttl", "24h")
}

// LoadConfig loads the application configuration from the config file (baseDir/config.yaml,
// REQSMITH_CONFIG_DIR or ~/.reqsmith), environment variables (REQSMITH_*), and defaults.
// It also loads .env files so secrets placed there are visible to GetSecret.
func LoadConfig(baseDir string) (*AppConfig, error) {
	configDir, err := EnsureConfigDir(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure config directory: %w", err)
	}

	if err := LoadDotEnv(DefaultEnvFileName, filepath.Join(configDir, DefaultEnvFileName)); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	configPath := filepath.Join(configDir, DefaultConfigFileName)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	log.Debug().Str("path", configPath).Msg("Attempting to load config file")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Error().Err(err).Str("path", configPath).Msg("Failed to read config file")
			return nil, fmt.Errorf("%w: %w", ErrConfigRead, err)
		}
		log.Debug().Str("path", configPath).Msg("Config file not found. Using defaults and environment variables.")
	} else {
		log.Debug().Str("path", configPath).Msg("Read config file successfully")
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		log.Error().Err(err).Str("path", configPath).Msg("Failed to unmarshal config file")
		return nil, fmt.Errorf("%w: %w", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Debug().Str("path", configPath).Interface("config", cfg).Msg("Unmarshalled config successfully")

	return &cfg, nil
}

const defaultConfigYAML = `# Configuration for reqsmith.
# Located at ~/.reqsmith/config.yaml (override the directory with REQSMITH_CONFIG_DIR).
# Any key can be overridden from the environment, e.g. REQSMITH_LLM_OPENAI_MODEL_NAME.
# Secrets (OPENAI_API_KEY, JIRA_*) never belong here: use 'reqsmith config set-secret'
# or a .env file next to this one.

llm:
  # "openai", or "mock" to echo the prompt back without calling any API.
  provider: "openai"
  openai:
    model_name: "gpt-4o-mini"
    # base_url: ""   # e.g. a proxy; must include the /v1 suffix
  # 0 keeps the client library default.
  timeout: "0s"

tracker:
  # Set to false to hide the ticket action entirely.
  enabled: true
  issue_type: "Task"
  timeout: "0s"

export:
  filename: "requirements.pdf"
  font_family: "Arial"
  font_size: 12
  line_height: 10
  page_break_margin: 15
  # "iso-8859-1" or "windows-1252". Characters outside it become the substitute.
  charset: "iso-8859-1"
  substitute: "?"

server:
  addr: "127.0.0.1:8501"
  # Origins allowed to call the JSON API from a browser.
  allowed_origins: []
  # 0 disables the generation throttle.
  generate_per_minute: 0

session:
  # "memory" keeps documents in the process; "redis" shares them between instances.
  backend: "memory"
  redis_addr: "localhost:6379"
  redis_db: 0
  ttl: "24h"
`

const defaultEnvExample = `# Copy to .env (in this directory or the working directory) and fill in.
# Values already set in the environment or the OS keyring take precedence.
OPENAI_API_KEY=
JIRA_SERVER=https://your-domain.atlassian.net
JIRA_EMAIL=
JIRA_API_TOKEN=
JIRA_PROJECT_KEY=
`

// writeFileIfNotExists checks if a file exists. If not, it writes the provided content.
func writeFileIfNotExists(filePath string, content string, perm os.FileMode) error {
	_, err := os.Stat(filePath)
	if err == nil {
		log.Debug().Str("path", filePath).Msg("File already exists, no action needed")
		return nil
	}
	if !os.IsNotExist(err) {
		log.Error().Err(err).Str("path", filePath).Msg("Failed to stat file path")
		return fmt.Errorf("%w: %w", ErrDefaultFileStat, err)
	}

	log.Info().Str("path", filePath).Msg("File does not exist, attempting to write default content")
	if errWrite := os.WriteFile(filePath, []byte(content), perm); errWrite != nil {
		log.Error().Err(errWrite).Str("path", filePath).Msg("Failed to write default file content")
		return fmt.Errorf("%w: %w", ErrDefaultFileWrite, errWrite)
	}
	log.Info().Str("path", filePath).Msg("Successfully wrote default file content")
	return nil
}

// CreateDefaultConfigFiles ensures the configuration directory exists and writes
// config.yaml and .env.example into it unless they already exist.
func CreateDefaultConfigFiles(baseDir string) error {
	configDir, err := EnsureConfigDir(baseDir)
	if err != nil {
		return fmt.Errorf("failed to ensure config directory: %w", err)
	}

	filesToCreate := []struct {
		name    string
		content string
		perm    os.FileMode
	}{
		{DefaultConfigFileName, defaultConfigYAML, 0600},
		{DefaultEnvExampleFileName, defaultEnvExample, 0600},
	}

	for _, file := range filesToCreate {
		log.Debug().Str("file", file.name).Msg("Ensuring default file")
		if err := writeFileIfNotExists(filepath.Join(configDir, file.name), file.content, file.perm); err != nil {
			return err
		}
	}
	return nil
}
