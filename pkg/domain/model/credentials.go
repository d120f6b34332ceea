package model

import (
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const redactedValue = "********"

// Credentials is the provider specific secret material of a Connection.
// Implementations are plain value structs so they can be copied freely.
type Credentials interface {
	// Validate checks that every field the provider needs is present
	Validate() error
	// Redacted returns the credential fields with secrets masked
	Redacted() map[string]any
}

// SlackCredentials authenticates with a bot token
type SlackCredentials struct {
	BotToken  string `json:"bot_token" masq:"secret"`
	ChannelID string `json:"channel_id,omitempty"`
}

func (c SlackCredentials) Validate() error {
	if c.BotToken == "" {
		return newValidationError("slack bot token is required")
	}
	return nil
}

func (c SlackCredentials) Redacted() map[string]any {
	return map[string]any{
		"bot_token":  mask(c.BotToken),
		"channel_id": c.ChannelID,
	}
}

// NotionCredentials authenticates with an internal integration secret
type NotionCredentials struct {
	IntegrationSecret string `json:"integration_secret" masq:"secret"`
}

func (c NotionCredentials) Validate() error {
	if c.IntegrationSecret == "" {
		return newValidationError("notion integration secret is required")
	}
	return nil
}

func (c NotionCredentials) Redacted() map[string]any {
	return map[string]any{"integration_secret": mask(c.IntegrationSecret)}
}

// LinearCredentials authenticates with a personal API key
type LinearCredentials struct {
	APIKey string `json:"api_key" masq:"secret"`
}

func (c LinearCredentials) Validate() error {
	if c.APIKey == "" {
		return newValidationError("linear API key is required")
	}
	return nil
}

func (c LinearCredentials) Redacted() map[string]any {
	return map[string]any{"api_key": mask(c.APIKey)}
}

// GoogleCredentials is an OAuth2 client plus token pair, shared by Drive, Gmail and Calendar
type GoogleCredentials struct {
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret" masq:"secret"`
	AccessToken  string    `json:"access_token,omitempty" masq:"secret"`
	RefreshToken string    `json:"refresh_token,omitempty" masq:"secret"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

func (c GoogleCredentials) Validate() error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return newValidationError("google client ID and client secret are required")
	}
	if c.AccessToken == "" && c.RefreshToken == "" {
		return newValidationError("google access token or refresh token is required")
	}
	return nil
}

func (c GoogleCredentials) Redacted() map[string]any {
	return map[string]any{
		"client_id":     c.ClientID,
		"client_secret": mask(c.ClientSecret),
		"access_token":  mask(c.AccessToken),
		"refresh_token": mask(c.RefreshToken),
	}
}

// GitHubCredentials holds a GitHub App installation and/or a user OAuth token.
// The installation is preferred when both are present.
type GitHubCredentials struct {
	AppID          int64  `json:"app_id,omitempty"`
	InstallationID int64  `json:"installation_id,omitempty"`
	PrivateKey     string `json:"private_key,omitempty" masq:"secret"`
	OAuthToken     string `json:"oauth_token,omitempty" masq:"secret"`
}

// HasInstallation reports whether the App installation fields are complete
func (c GitHubCredentials) HasInstallation() bool {
	return c.AppID != 0 && c.InstallationID != 0 && c.PrivateKey != ""
}

func (c GitHubCredentials) Validate() error {
	if !c.HasInstallation() && c.OAuthToken == "" {
		return newValidationError("github app installation or oauth token is required")
	}
	return nil
}

func (c GitHubCredentials) Redacted() map[string]any {
	return map[string]any{
		"app_id":          c.AppID,
		"installation_id": c.InstallationID,
		"private_key":     mask(c.PrivateKey),
		"oauth_token":     mask(c.OAuthToken),
	}
}

// DiscordCredentials authenticates a bot
type DiscordCredentials struct {
	BotToken string `json:"bot_token" masq:"secret"`
	GuildID  string `json:"guild_id,omitempty"`
}

func (c DiscordCredentials) Validate() error {
	if c.BotToken == "" {
		return newValidationError("discord bot token is required")
	}
	return nil
}

func (c DiscordCredentials) Redacted() map[string]any {
	return map[string]any{
		"bot_token": mask(c.BotToken),
		"guild_id":  c.GuildID,
	}
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return redactedValue
}

// ValidateCredentials checks that creds is the variant expected by provider and is complete
func ValidateCredentials(provider Provider, creds Credentials) error {
	if creds == nil {
		return newValidationError("credentials are required", goerr.V(ProviderKey, provider))
	}

	var ok bool
	switch provider {
	case ProviderSlack:
		_, ok = creds.(SlackCredentials)
	case ProviderNotion:
		_, ok = creds.(NotionCredentials)
	case ProviderLinear:
		_, ok = creds.(LinearCredentials)
	case ProviderGDrive, ProviderGmail, ProviderGCal:
		_, ok = creds.(GoogleCredentials)
	case ProviderGitHub:
		_, ok = creds.(GitHubCredentials)
	case ProviderDiscord:
		_, ok = creds.(DiscordCredentials)
	default:
		return provider.Validate()
	}
	if !ok {
		return newValidationError("credentials do not match provider", goerr.V(ProviderKey, provider))
	}

	if err := creds.Validate(); err != nil {
		return goerr.Wrap(err, "invalid credentials", goerr.V(ProviderKey, provider))
	}
	return nil
}

// DecodeCredentials parses a JSON object into the credential variant of provider
func DecodeCredentials(provider Provider, data []byte) (Credentials, error) {
	var (
		creds Credentials
		err   error
	)

	switch provider {
	case ProviderSlack:
		creds, err = decodeAs[SlackCredentials](data)
	case ProviderNotion:
		creds, err = decodeAs[NotionCredentials](data)
	case ProviderLinear:
		creds, err = decodeAs[LinearCredentials](data)
	case ProviderGDrive, ProviderGmail, ProviderGCal:
		creds, err = decodeAs[GoogleCredentials](data)
	case ProviderGitHub:
		creds, err = decodeAs[GitHubCredentials](data)
	case ProviderDiscord:
		creds, err = decodeAs[DiscordCredentials](data)
	default:
		return nil, provider.Validate()
	}
	if err != nil {
		return nil, goerr.Wrap(ErrValidation, "malformed credentials",
			goerr.V(ProviderKey, provider), goerr.V("cause", err.Error()))
	}

	return creds, nil
}

func decodeAs[T Credentials](data []byte) (Credentials, error) {
	var v T
	if len(data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// CredentialsToMap converts creds into a JSON compatible map for document stores
func CredentialsToMap(creds Credentials) (map[string]any, error) {
	raw, err := json.Marshal(creds)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal credentials")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal credentials")
	}
	return m, nil
}

// CredentialsFromMap is the inverse of CredentialsToMap
func CredentialsFromMap(provider Provider, m map[string]any) (Credentials, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal credentials map")
	}
	return DecodeCredentials(provider, raw)
}
