// Package discord describes the Discord REST API for endpoint discovery.
// There is no data adapter for Discord.
package discord

import (
	"time"

	"github.com/secmon-lab/polyconn/pkg/domain/model"
)

var Info = model.ServiceInfo{
	Name:       "Discord",
	APIVersion: "v10",
	BaseURL:    "https://discord.com/api/v10",
}

var globalLimit = &model.RateLimit{Requests: 50, Window: time.Second}

func Endpoints() []model.DiscoveredEndpoint {
	guildID := model.EndpointParameter{Name: "guild.id", Type: "snowflake", Required: true}
	channelID := model.EndpointParameter{Name: "channel.id", Type: "snowflake", Required: true}

	return []model.DiscoveredEndpoint{
		{
			ID:             "discord.guilds.get",
			Name:           "Get guild",
			Description:    "Returns the guild object for the given ID",
			Path:           "/guilds/{guild.id}",
			HTTPMethod:     "GET",
			Category:       "guilds",
			Authentication: "bot",
			RateLimit:      globalLimit,
			Parameters: []model.EndpointParameter{
				guildID,
				{Name: "with_counts", Type: "boolean"},
			},
		},
		{
			ID:             "discord.guilds.channels",
			Name:           "List guild channels",
			Description:    "Returns the channels of a guild",
			Path:           "/guilds/{guild.id}/channels",
			HTTPMethod:     "GET",
			Category:       "guilds",
			Subcategory:    "channels",
			Authentication: "bot",
			RateLimit:      globalLimit,
			Parameters:     []model.EndpointParameter{guildID},
		},
		{
			ID:             "discord.channels.messages",
			Name:           "Get channel messages",
			Description:    "Returns messages of a channel, newest first",
			Path:           "/channels/{channel.id}/messages",
			HTTPMethod:     "GET",
			Category:       "channels",
			Subcategory:    "messages",
			Authentication: "bot",
			RateLimit:      globalLimit,
			Parameters: []model.EndpointParameter{
				channelID,
				{Name: "before", Type: "snowflake"},
				{Name: "after", Type: "snowflake"},
				{Name: "limit", Type: "integer", Description: "1-100", Example: "50"},
			},
		},
		{
			ID:             "discord.channels.messages.create",
			Name:           "Create message",
			Description:    "Posts a message to a channel",
			Path:           "/channels/{channel.id}/messages",
			HTTPMethod:     "POST",
			Category:       "channels",
			Subcategory:    "messages",
			Authentication: "bot",
			RateLimit:      globalLimit,
			Parameters: []model.EndpointParameter{
				channelID,
				{Name: "content", Type: "string", Required: true},
			},
		},
		{
			ID:             "discord.users.get",
			Name:           "Get user",
			Description:    "Returns a user object",
			Path:           "/users/{user.id}",
			HTTPMethod:     "GET",
			Category:       "users",
			Authentication: "bot",
			RateLimit:      globalLimit,
			Parameters: []model.EndpointParameter{
				{Name: "user.id", Type: "snowflake", Required: true},
			},
		},
	}
}
