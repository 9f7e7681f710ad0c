package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/karolswdev/reqsmith/internal/config"
	"github.com/karolswdev/reqsmith/internal/export"
	"github.com/karolswdev/reqsmith/internal/llm"
	"github.com/karolswdev/reqsmith/internal/pipeline"
	"github.com/karolswdev/reqsmith/internal/session"
	"github.com/karolswdev/reqsmith/internal/tracker"
)

// --- Concrete Implementations of Shared Interfaces ---

// DefaultConfigProvider implements ConfigProvider with the config package.
type DefaultConfigProvider struct{}

func (p *DefaultConfigProvider) LoadConfig() (*config.AppConfig, error) {
	return config.LoadConfig("")
}

func (p *DefaultConfigProvider) CreateDefaultConfigFiles() error {
	return config.CreateDefaultConfigFiles("")
}

func (p *DefaultConfigProvider) EnsureConfigDir() (string, error) {
	return config.EnsureConfigDir("")
}

// defaultKeyringClient implements KeyringClient with the config package.
type defaultKeyringClient struct{}

func (k *defaultKeyringClient) SetSecret(name, value string) error {
	return config.SetSecret(name, value)
}

func (k *defaultKeyringClient) GetSecret(name string) (string, error) {
	return config.GetSecret(name)
}

// unavailableLLM stands in for a completion client that could not be built,
// so the failure surfaces when generation is attempted.
type unavailableLLM struct {
	err error
}

func (u unavailableLLM) Complete(context.Context, string) (string, error) {
	return "", u.err
}

// unavailableFiler does the same for ticket filing.
type unavailableFiler struct {
	err error
}

func (u unavailableFiler) CreateIssue(context.Context, string, string) (*tracker.TicketResult, error) {
	return nil, u.err
}

// --- Central Provider ---

// Provider aggregates the services commands need. Missing credentials do not
// fail construction; the affected action reports them when it runs.
type Provider struct {
	Config    ConfigProvider
	Keyring   KeyringClient
	AppConfig *config.AppConfig
	LLM       llm.Client
	// Tracker is nil when ticket filing is disabled.
	Tracker  pipeline.TicketFiler
	Exporter *export.Exporter
	Sessions *session.Manager

	redis *redis.Client
}

// Pipeline builds a pipeline over the provider's services.
func (p *Provider) Pipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return pipeline.New(p.LLM, p.Exporter, p.Tracker, opts...)
}

// Close releases connections held by the provider.
func (p *Provider) Close() error {
	if p.redis != nil {
		return p.redis.Close()
	}
	return nil
}

// newProvider is swapped by tests.
var newProvider = GetProvider

// GetProvider loads the configuration and builds every service from it.
func GetProvider() (*Provider, error) {
	return NewProvider(&DefaultConfigProvider{}, &defaultKeyringClient{})
}

// NewProvider builds a Provider from explicit configuration and secret sources.
func NewProvider(cfgProvider ConfigProvider, keyringClient KeyringClient) (*Provider, error) {
	appCfg, err := cfgProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load application config: %w", err)
	}

	exporter, err := export.NewExporter(export.Options{
		Filename:        appCfg.Export.Filename,
		FontFamily:      appCfg.Export.FontFamily,
		FontSize:        appCfg.Export.FontSize,
		LineHeight:      appCfg.Export.LineHeight,
		PageBreakMargin: appCfg.Export.PageBreakMargin,
		Charset:         appCfg.Export.Charset,
		Substitute:      appCfg.Export.Substitute,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid export configuration: %w", err)
	}

	provider := &Provider{
		Config:    cfgProvider,
		Keyring:   keyringClient,
		AppConfig: appCfg,
		LLM:       newLLMClient(appCfg, keyringClient),
		Tracker:   newTicketFiler(appCfg, keyringClient),
		Exporter:  exporter,
	}

	switch appCfg.Session.Backend {
	case config.BackendRedis:
		provider.redis = redis.NewClient(&redis.Options{
			Addr: appCfg.Session.RedisAddr,
			DB:   appCfg.Session.RedisDB,
		})
		provider.Sessions = session.NewManager(session.NewRedisStore(provider.redis, appCfg.Session.TTL))
		Log.Debug().Str("addr", appCfg.Session.RedisAddr).Int("db", appCfg.Session.RedisDB).Msg("Using redis session store")
	default:
		provider.Sessions = session.NewManager(session.NewMemoryStore())
	}

	Log.Debug().Msg("Service Provider initialized successfully.")
	return provider, nil
}

func newLLMClient(appCfg *config.AppConfig, kc KeyringClient) llm.Client {
	if appCfg.LLM.Provider == config.ProviderMock {
		Log.Info().Msg("Using mock LLM provider; the prompt is echoed back.")
		return llm.EchoClient{}
	}

	apiKey, err := kc.GetSecret(config.SecretOpenAIAPIKey)
	if err != nil {
		Log.Warn().Err(err).Msg("OpenAI API key unavailable; generation will fail until it is set.")
		return unavailableLLM{err: err}
	}

	openAIConfig := openai.DefaultConfig(apiKey)
	if appCfg.LLM.OpenAI.BaseURL != "" {
		openAIConfig.BaseURL = appCfg.LLM.OpenAI.BaseURL
		Log.Debug().Str("base_url", openAIConfig.BaseURL).Msg("Using custom OpenAI BaseURL")
	}
	if appCfg.LLM.Timeout > 0 {
		openAIConfig.HTTPClient = &http.Client{Timeout: appCfg.LLM.Timeout}
	}

	client, err := llm.NewOpenAIClient(openai.NewClientWithConfig(openAIConfig), appCfg.LLM.OpenAI.ModelName)
	if err != nil {
		Log.Warn().Err(err).Msg("Failed to initialize OpenAI client.")
		return unavailableLLM{err: err}
	}
	return client
}

func newTicketFiler(appCfg *config.AppConfig, kc KeyringClient) pipeline.TicketFiler {
	if !appCfg.Tracker.Enabled {
		Log.Debug().Msg("Ticket filing disabled in configuration.")
		return nil
	}

	cfg := tracker.Config{IssueType: appCfg.Tracker.IssueType}
	secrets := []struct {
		name string
		dst  *string
	}{
		{config.SecretJiraServer, &cfg.ServerURL},
		{config.SecretJiraEmail, &cfg.Email},
		{config.SecretJiraAPIToken, &cfg.APIToken},
		{config.SecretJiraProjectKey, &cfg.ProjectKey},
	}
	for _, s := range secrets {
		value, err := kc.GetSecret(s.name)
		if err != nil {
			Log.Warn().Err(err).Msg("Jira secret unavailable; ticket filing will fail until it is set.")
			return unavailableFiler{err: err}
		}
		*s.dst = value
	}

	var httpClient *http.Client
	if appCfg.Tracker.Timeout > 0 {
		httpClient = &http.Client{Timeout: appCfg.Tracker.Timeout}
	}
	client, err := tracker.New(cfg, httpClient)
	if err != nil {
		Log.Warn().Err(err).Msg("Failed to initialize Jira client.")
		return unavailableFiler{err: err}
	}
	return client
}
