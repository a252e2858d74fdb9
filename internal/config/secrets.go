package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Keys inside the structured secrets file. The file mirrors the layout
// the dashboard's operators already maintain: a gcp_service_account map
// and a sheets.url entry.
const (
	secretsCredentialsKey = "gcp_service_account"
	secretsWorkbookKey    = "sheets.url"
)

// envCredentialsPath is the conventional variable naming a credential
// file on disk. It is the last credential source consulted.
const envCredentialsPath = "GOOGLE_APPLICATION_CREDENTIALS"

// Credentials resolves service-account JSON from the layered sources:
// the secrets file, then literal JSON from the environment, then a file
// path from the environment. The first source that yields material wins.
// When no source is configured it returns ErrNoCredentials; callers
// switch the session to the local fallback store on that condition.
func (c *Config) Credentials(ctx context.Context) ([]byte, error) {
	if c.SecretsFile != "" {
		creds, err := credentialsFromSecrets(c.SecretsFile)
		if err != nil {
			return nil, err
		}
		if creds != nil {
			return creds, nil
		}
	}

	if s := strings.TrimSpace(c.CredentialsJSON); s != "" {
		if !json.Valid([]byte(s)) {
			return nil, fmt.Errorf("%w: credentials_json is not valid JSON", ErrInvalidConfig)
		}
		return []byte(s), nil
	}

	if path := os.Getenv(envCredentialsPath); path != "" {
		creds, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrInvalidConfig, envCredentialsPath, err)
		}
		return creds, nil
	}

	return nil, ErrNoCredentials
}

// WorkbookLocator resolves the spreadsheet URL/ID, preferring the
// secrets file over the flat config value.
func (c *Config) WorkbookLocator() string {
	if c.SecretsFile != "" {
		if url, err := workbookFromSecrets(c.SecretsFile); err == nil && url != "" {
			return url
		}
	}
	return strings.TrimSpace(c.SpreadsheetURL)
}

func loadSecrets(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: secrets file: %w", ErrLoadConfig, err)
	}
	return k, nil
}

func credentialsFromSecrets(path string) ([]byte, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	k, err := loadSecrets(path)
	if err != nil {
		return nil, err
	}
	if !k.Exists(secretsCredentialsKey) {
		return nil, nil
	}
	raw := k.Get(secretsCredentialsKey)
	creds, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s: %w", ErrInvalidConfig, secretsCredentialsKey, err)
	}
	return creds, nil
}

func workbookFromSecrets(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}
	k, err := loadSecrets(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(k.String(secretsWorkbookKey)), nil
}
