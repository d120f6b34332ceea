package discovery

import (
	"github.com/secmon-lab/polyconn/pkg/domain/model"
	"github.com/secmon-lab/polyconn/pkg/service/discord"
	"github.com/secmon-lab/polyconn/pkg/service/github"
	"github.com/secmon-lab/polyconn/pkg/service/google"
	"github.com/secmon-lab/polyconn/pkg/service/linear"
	"github.com/secmon-lab/polyconn/pkg/service/notion"
	"github.com/secmon-lab/polyconn/pkg/service/slack"
)

// Default returns a registry with the built-in catalogs of all providers
func Default() *Registry {
	r := New()
	r.Register(model.ProviderSlack, slack.Info, Static(slack.Endpoints))
	r.Register(model.ProviderNotion, notion.Info, Static(notion.Endpoints))
	r.Register(model.ProviderLinear, linear.Info, Static(linear.Endpoints))
	r.Register(model.ProviderGDrive, google.DriveInfo, Static(google.DriveEndpoints))
	r.Register(model.ProviderGmail, google.GmailInfo, Static(google.GmailEndpoints))
	r.Register(model.ProviderGCal, google.CalendarInfo, Static(google.CalendarEndpoints))
	r.Register(model.ProviderGitHub, github.Info, Static(github.Endpoints))
	r.Register(model.ProviderDiscord, discord.Info, Static(discord.Endpoints))
	return r
}
