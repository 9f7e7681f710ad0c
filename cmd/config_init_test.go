package cmd

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigInitCmd_Success(t *testing.T) {
	mockProvider := new(MockConfigProvider)
	var out bytes.Buffer
	mockProvider.On("CreateDefaultConfigFiles").Return(nil)

	err := configInitRunE(mockProvider, &out)

	assert.NoError(t, err)
	assert.Contains(t, out.String(), "Configuration directory and default files ensured.")
	mockProvider.AssertExpectations(t)
}

func TestConfigInitCmd_ProviderError(t *testing.T) {
	mockProvider := new(MockConfigProvider)
	var out bytes.Buffer
	expectedErr := errors.New("failed to create config dir")
	mockProvider.On("CreateDefaultConfigFiles").Return(expectedErr)

	err := configInitRunE(mockProvider, &out)

	assert.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Contains(t, err.Error(), "failed to initialize configuration")
	assert.Empty(t, out.String())
	mockProvider.AssertExpectations(t)
}

func TestConfigInitCmd_ViaRoot(t *testing.T) {
	mockProvider := new(MockConfigProvider)
	mockProvider.On("CreateDefaultConfigFiles").Return(nil).Once()
	useConfigDeps(t, mockProvider, new(MockKeyringClient))

	stdout, _, err := executeCommand(t, "", "config", "init")

	assert.NoError(t, err)
	assert.Contains(t, stdout, "default files ensured")
	mockProvider.AssertExpectations(t)
}
