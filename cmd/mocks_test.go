package cmd

import (
	"github.com/stretchr/testify/mock"

	"github.com/karolswdev/reqsmith/internal/config"
)

// --- Mock ConfigProvider ---

type MockConfigProvider struct {
	mock.Mock
}

// LoadConfig matches ConfigProvider interface
func (m *MockConfigProvider) LoadConfig() (*config.AppConfig, error) {
	args := m.Called()
	cfg, _ := args.Get(0).(*config.AppConfig)
	return cfg, args.Error(1)
}

// CreateDefaultConfigFiles matches ConfigProvider interface
func (m *MockConfigProvider) CreateDefaultConfigFiles() error {
	args := m.Called()
	return args.Error(0)
}

// EnsureConfigDir matches ConfigProvider interface
func (m *MockConfigProvider) EnsureConfigDir() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// --- Mock KeyringClient ---

type MockKeyringClient struct {
	mock.Mock
}

// SetSecret matches KeyringClient interface
func (m *MockKeyringClient) SetSecret(name, value string) error {
	args := m.Called(name, value)
	return args.Error(0)
}

// GetSecret matches KeyringClient interface
func (m *MockKeyringClient) GetSecret(name string) (string, error) {
	args := m.Called(name)
	return args.String(0), args.Error(1)
}
