package config

import "errors"

// Sentinel errors for configuration loading and processing.

// ErrConfigRead indicates an error occurred while reading the config file.
var ErrConfigRead = errors.New("failed to read configuration file")

// ErrConfigParse indicates an error occurred while parsing the config file.
var ErrConfigParse = errors.New("failed to parse configuration file")

// ErrConfigInvalid indicates a configuration value is outside its allowed set.
var ErrConfigInvalid = errors.New("invalid configuration value")

// ErrConfigDirCreate indicates an error occurred while creating the config directory.
var ErrConfigDirCreate = errors.New("failed to create config directory")

// ErrConfigDirStat indicates an error occurred while checking the config directory.
var ErrConfigDirStat = errors.New("failed to check config directory")

// ErrConfigDirNotDir indicates the config path exists but is not a directory.
var ErrConfigDirNotDir = errors.New("config path exists but is not a directory")

// ErrDefaultFileWrite indicates an error occurred while writing a default config file.
var ErrDefaultFileWrite = errors.New("failed to write default config file")

// ErrDefaultFileStat indicates an error occurred while checking a default config file.
var ErrDefaultFileStat = errors.New("failed to check default config file")

// ErrDotEnvLoad indicates a .env file exists but could not be parsed.
var ErrDotEnvLoad = errors.New("failed to load .env file")

// ErrKeyringSet indicates an error occurred while setting a secret in the OS keyring.
var ErrKeyringSet = errors.New("failed to set secret in OS keyring")

// ErrKeyringGet indicates an error occurred while reading the OS keyring (excluding 'not found').
var ErrKeyringGet = errors.New("failed to get secret from OS keyring")

// ErrSecretNotFound indicates a secret is in neither the OS keyring nor the environment.
var ErrSecretNotFound = errors.New("secret not found in OS keyring or environment")

// ErrUnknownSecret indicates a secret name outside the supported set.
var ErrUnknownSecret = errors.New("unknown secret name")
