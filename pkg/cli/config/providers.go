package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

const defaultProviderTimeout = 30 * time.Second

// Providers holds the per-provider credentials read from flags or the
// process environment. A provider whose credential set is incomplete is
// dropped by the environment use case.
type Providers struct {
	slackBotToken  string
	slackChannelID string

	notionSecret string
	linearAPIKey string

	googleClientID     string
	googleClientSecret string
	googleAccessToken  string
	googleRefreshToken string

	githubAppID          int64
	githubInstallationID int64
	githubPrivateKey     string
	githubPrivateKeyFile string
	githubOAuthToken     string

	discordBotToken string
	discordGuildID  string

	timeout time.Duration
}

func (x *Providers) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "provider-timeout",
			Usage:       "Timeout of a single call to a provider API",
			Value:       defaultProviderTimeout,
			Sources:     cli.EnvVars("POLYCONN_PROVIDER_TIMEOUT"),
			Destination: &x.timeout,
		},
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token",
			Category:    "Slack",
			Sources:     cli.EnvVars("POLYCONN_SLACK_BOT_TOKEN"),
			Destination: &x.slackBotToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel used as the default data source",
			Category:    "Slack",
			Sources:     cli.EnvVars("POLYCONN_SLACK_CHANNEL_ID"),
			Destination: &x.slackChannelID,
		},
		&cli.StringFlag{
			Name:        "notion-integration-secret",
			Usage:       "Notion internal integration secret",
			Category:    "Notion",
			Sources:     cli.EnvVars("POLYCONN_NOTION_INTEGRATION_SECRET"),
			Destination: &x.notionSecret,
		},
		&cli.StringFlag{
			Name:        "linear-api-key",
			Usage:       "Linear personal API key",
			Category:    "Linear",
			Sources:     cli.EnvVars("POLYCONN_LINEAR_API_KEY"),
			Destination: &x.linearAPIKey,
		},
		&cli.StringFlag{
			Name:        "google-client-id",
			Usage:       "Google OAuth2 client ID (Drive, Gmail and Calendar)",
			Category:    "Google",
			Sources:     cli.EnvVars("POLYCONN_GOOGLE_CLIENT_ID"),
			Destination: &x.googleClientID,
		},
		&cli.StringFlag{
			Name:        "google-client-secret",
			Usage:       "Google OAuth2 client secret",
			Category:    "Google",
			Sources:     cli.EnvVars("POLYCONN_GOOGLE_CLIENT_SECRET"),
			Destination: &x.googleClientSecret,
		},
		&cli.StringFlag{
			Name:        "google-access-token",
			Usage:       "Google OAuth2 access token",
			Category:    "Google",
			Sources:     cli.EnvVars("POLYCONN_GOOGLE_ACCESS_TOKEN"),
			Destination: &x.googleAccessToken,
		},
		&cli.StringFlag{
			Name:        "google-refresh-token",
			Usage:       "Google OAuth2 refresh token",
			Category:    "Google",
			Sources:     cli.EnvVars("POLYCONN_GOOGLE_REFRESH_TOKEN"),
			Destination: &x.googleRefreshToken,
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Category:    "GitHub",
			Sources:     cli.EnvVars("POLYCONN_GITHUB_APP_ID"),
			Destination: &x.githubAppID,
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Category:    "GitHub",
			Sources:     cli.EnvVars("POLYCONN_GITHUB_INSTALLATION_ID"),
			Destination: &x.githubInstallationID,
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "GitHub App private key (PEM)",
			Category:    "GitHub",
			Sources:     cli.EnvVars("POLYCONN_GITHUB_PRIVATE_KEY"),
			Destination: &x.githubPrivateKey,
		},
		&cli.StringFlag{
			Name:        "github-private-key-file",
			Usage:       "Path to the GitHub App private key (PEM)",
			Category:    "GitHub",
			TakesFile:   true,
			Sources:     cli.EnvVars("POLYCONN_GITHUB_PRIVATE_KEY_FILE"),
			Destination: &x.githubPrivateKeyFile,
		},
		&cli.StringFlag{
			Name:        "github-oauth-token",
			Usage:       "GitHub user OAuth token, used when no App installation is configured or as fallback",
			Category:    "GitHub",
			Sources:     cli.EnvVars("POLYCONN_GITHUB_OAUTH_TOKEN"),
			Destination: &x.githubOAuthToken,
		},
		&cli.StringFlag{
			Name:        "discord-bot-token",
			Usage:       "Discord bot token",
			Category:    "Discord",
			Sources:     cli.EnvVars("POLYCONN_DISCORD_BOT_TOKEN"),
			Destination: &x.discordBotToken,
		},
		&cli.StringFlag{
			Name:        "discord-guild-id",
			Usage:       "Discord guild ID",
			Category:    "Discord",
			Sources:     cli.EnvVars("POLYCONN_DISCORD_GUILD_ID"),
			Destination: &x.discordGuildID,
		},
	}
}

func (x Providers) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("provider-timeout", x.timeout),
		slog.Int("slack-bot-token.len", len(x.slackBotToken)),
		slog.String("slack-channel-id", x.slackChannelID),
		slog.Int("notion-integration-secret.len", len(x.notionSecret)),
		slog.Int("linear-api-key.len", len(x.linearAPIKey)),
		slog.String("google-client-id", x.googleClientID),
		slog.Int("google-refresh-token.len", len(x.googleRefreshToken)),
		slog.Int64("github-app-id", x.githubAppID),
		slog.Int64("github-installation-id", x.githubInstallationID),
		slog.Int("github-oauth-token.len", len(x.githubOAuthToken)),
		slog.Int("discord-bot-token.len", len(x.discordBotToken)),
	)
}

// Timeout returns the per call provider timeout, never zero
func (x *Providers) Timeout() time.Duration {
	if x.timeout <= 0 {
		return defaultProviderTimeout
	}
	return x.timeout
}

// Credentials returns the credential set of every provider with at least one
// value given. Google credentials are shared by Drive, Gmail and Calendar.
func (x *Providers) Credentials() (map[model.Provider]model.Credentials, error) {
	creds := make(map[model.Provider]model.Credentials)

	if x.slackBotToken != "" || x.slackChannelID != "" {
		creds[model.ProviderSlack] = model.SlackCredentials{
			BotToken:  x.slackBotToken,
			ChannelID: x.slackChannelID,
		}
	}
	if x.notionSecret != "" {
		creds[model.ProviderNotion] = model.NotionCredentials{IntegrationSecret: x.notionSecret}
	}
	if x.linearAPIKey != "" {
		creds[model.ProviderLinear] = model.LinearCredentials{APIKey: x.linearAPIKey}
	}

	if x.googleClientID != "" || x.googleClientSecret != "" || x.googleAccessToken != "" || x.googleRefreshToken != "" {
		google := model.GoogleCredentials{
			ClientID:     x.googleClientID,
			ClientSecret: x.googleClientSecret,
			AccessToken:  x.googleAccessToken,
			RefreshToken: x.googleRefreshToken,
		}
		for _, p := range []model.Provider{model.ProviderGDrive, model.ProviderGmail, model.ProviderGCal} {
			creds[p] = google
		}
	}

	privateKey := x.githubPrivateKey
	if privateKey == "" && x.githubPrivateKeyFile != "" {
		// #nosec G304 - path is provided by the operator
		raw, err := os.ReadFile(x.githubPrivateKeyFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read github private key", goerr.V("path", x.githubPrivateKeyFile))
		}
		privateKey = string(raw)
	}
	if x.githubAppID != 0 || x.githubInstallationID != 0 || privateKey != "" || x.githubOAuthToken != "" {
		creds[model.ProviderGitHub] = model.GitHubCredentials{
			AppID:          x.githubAppID,
			InstallationID: x.githubInstallationID,
			PrivateKey:     privateKey,
			OAuthToken:     x.githubOAuthToken,
		}
	}

	if x.discordBotToken != "" {
		creds[model.ProviderDiscord] = model.DiscordCredentials{
			BotToken: x.discordBotToken,
			GuildID:  x.discordGuildID,
		}
	}

	return creds, nil
}
